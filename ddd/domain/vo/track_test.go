package vo

import "testing"

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en", "English"},
		{"eng", "English"},
		{"HIN", "Hindi"},
		{"ja", "Japanese"},
		{"unk", "Unknown"},
		{"", "Unknown"},
		{"  ", "Unknown"},
		{"xx", "Xx"},
		{"GER", "Ger"},
	}
	for _, tc := range cases {
		if got := NormalizeLanguage(tc.in); got != tc.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTrackOutputFileName(t *testing.T) {
	track := Track{MapIndex: 2, Codec: "aac", Language: "English"}
	got := track.OutputFileName("My Movie: Part 1", 1)
	want := "My Movie_ Part 1_English_track1.aac"
	if got != want {
		t.Fatalf("OutputFileName = %q, want %q", got, want)
	}

	unknown := Track{MapIndex: 3, Codec: "", Language: "Unknown"}
	got = unknown.OutputFileName("clip", 2)
	want = "clip_Unknown_track2.audio"
	if got != want {
		t.Fatalf("OutputFileName = %q, want %q", got, want)
	}
}

func TestEncodeSettingsApply(t *testing.T) {
	base := EncodeSettings{Codec: "libx264", CRF: 25, Resolution: "854x480", Preset: "veryfast", AudioCodec: "libopus", AudioBitrate: "48k"}

	t.Run("valid updates", func(t *testing.T) {
		s, err := base.Apply("codec", "libx265")
		if err != nil || s.Codec != "libx265" {
			t.Fatalf("Apply(codec) = %+v, %v", s, err)
		}
		s, err = base.Apply("crf", "18")
		if err != nil || s.CRF != 18 {
			t.Fatalf("Apply(crf) = %+v, %v", s, err)
		}
		s, err = base.Apply("preset", "medium")
		if err != nil || s.Preset != "medium" {
			t.Fatalf("Apply(preset) = %+v, %v", s, err)
		}
		s, err = base.Apply("resolution", "1280x720")
		if err != nil || s.Resolution != "1280x720" {
			t.Fatalf("Apply(resolution) = %+v, %v", s, err)
		}
	})

	t.Run("rejected updates", func(t *testing.T) {
		if _, err := base.Apply("crf", "99"); err == nil {
			t.Error("crf 99 accepted")
		}
		if _, err := base.Apply("crf", "abc"); err == nil {
			t.Error("non-numeric crf accepted")
		}
		if _, err := base.Apply("preset", "turbo"); err == nil {
			t.Error("unknown preset accepted")
		}
		if _, err := base.Apply("resolution", "480p"); err == nil {
			t.Error("bad resolution accepted")
		}
		if _, err := base.Apply("bitrate", "1M"); err == nil {
			t.Error("key outside allow-list accepted")
		}
	})

	t.Run("receiver untouched", func(t *testing.T) {
		_, _ = base.Apply("codec", "libaom-av1")
		if base.Codec != "libx264" {
			t.Fatalf("Apply mutated receiver: %+v", base)
		}
	})
}

func TestSettingsFieldMapRoundTrip(t *testing.T) {
	defaults := EncodeSettings{Codec: "libx264", CRF: 25, Resolution: "854x480", Preset: "veryfast", AudioCodec: "libopus", AudioBitrate: "48k"}
	stored := EncodeSettings{Codec: "libx265", CRF: 20, Resolution: "1920x1080", Preset: "slow", AudioCodec: "aac", AudioBitrate: "128k"}

	got := SettingsFromFieldMap(stored.FieldMap(), defaults)
	if got != stored {
		t.Fatalf("round trip = %+v, want %+v", got, stored)
	}

	// Missing fields fall back to defaults.
	got = SettingsFromFieldMap(map[string]string{"codec": "libvpx-vp9"}, defaults)
	if got.Codec != "libvpx-vp9" || got.CRF != 25 || got.Preset != "veryfast" {
		t.Fatalf("partial map = %+v", got)
	}
}

func TestJobStateTransitions(t *testing.T) {
	ok := []struct{ from, to JobState }{
		{JobStateCreated, JobStateDownloading},
		{JobStateDownloading, JobStateInspecting},
		{JobStateDownloading, JobStateProcessing},
		{JobStateInspecting, JobStateProcessing},
		{JobStateProcessing, JobStateProcessing},
		{JobStateProcessing, JobStateUploading},
		{JobStateUploading, JobStateCompleted},
		{JobStateUploading, JobStateFailed},
		{JobStateCreated, JobStateFailed},
	}
	for _, tc := range ok {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	bad := []struct{ from, to JobState }{
		{JobStateCompleted, JobStateDownloading},
		{JobStateCompleted, JobStateFailed},
		{JobStateFailed, JobStateFailed},
		{JobStateCreated, JobStateUploading},
		{JobStateUploading, JobStateProcessing},
	}
	for _, tc := range bad {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}
