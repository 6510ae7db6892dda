package probe

import (
	"encoding/json"
	"testing"
)

func TestParseTracks(t *testing.T) {
	raw := `{
		"streams": [
			{"index": 1, "codec_name": "aac", "tags": {"language": "eng", "title": "Stereo"}},
			{"index": 2, "codec_name": "opus", "tags": {"language": "jpn"}},
			{"index": 4, "codec_name": "ac3"}
		]
	}`
	var report probeReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	tracks := parseTracks(report)
	if len(tracks) != 3 {
		t.Fatalf("tracks = %d, want 3", len(tracks))
	}
	if tracks[0].MapIndex != 1 || tracks[0].Codec != "aac" || tracks[0].Language != "English" || tracks[0].Title != "Stereo" {
		t.Errorf("track 0 = %+v", tracks[0])
	}
	if tracks[1].MapIndex != 2 || tracks[1].Language != "Japanese" {
		t.Errorf("track 1 = %+v", tracks[1])
	}
	// Untagged streams still come back, labeled Unknown.
	if tracks[2].MapIndex != 4 || tracks[2].Language != "Unknown" || tracks[2].Title != "" {
		t.Errorf("track 2 = %+v", tracks[2])
	}
}

func TestParseTracksEmpty(t *testing.T) {
	var report probeReport
	if err := json.Unmarshal([]byte(`{"streams": []}`), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tracks := parseTracks(report); len(tracks) != 0 {
		t.Errorf("tracks = %d, want 0", len(tracks))
	}
}
