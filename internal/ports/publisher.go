package ports

import "context"

// VerdictPublisher delivers evaluated verdicts to an external system.
type VerdictPublisher interface {
	PublishVerdict(ctx context.Context, verdict JobVerdict) error
	Close() error
}
