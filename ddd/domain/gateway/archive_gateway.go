package gateway

import "context"

// ArchiveGateway persists finished artifacts to long-term storage. The
// archive is optional and strictly best-effort: a failed archive upload is
// logged and never fails the job.
type ArchiveGateway interface {
	Enabled() bool
	ArchiveArtifact(ctx context.Context, localPath, objectKey string) error
}
