package archive

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// RegisterContext provides context for archive registration guards.
type RegisterContext struct {
	ChannelID       string
	ChannelExists   bool
	ChannelStatus   string
	InitiatedBy     string
	ExistingTopicID string // optional, empty when creating a new topic
	TopicExists     bool   // only checked if ExistingTopicID != ""
	TopicTitle      string // optional, empty when binding to an existing topic
}

// CanRegisterArchive evaluates whether an archive can be registered.
// Rules:
// - Channel must exist and be open or read_only
// - An initiating actor is required
// - Exactly one of existing-topic or new-topic params must be supplied
// - The existing topic must exist (if referenced)
func CanRegisterArchive(ctx RegisterContext) GuardResult {
	if !ctx.ChannelExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("channel %s not found", ctx.ChannelID),
		}
	}

	if ctx.ChannelStatus != ChannelOpen && ctx.ChannelStatus != ChannelReadOnly {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("channel %s is %s and cannot be archived", ctx.ChannelID, ctx.ChannelStatus),
		}
	}

	if ctx.InitiatedBy == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "an initiating actor is required",
		}
	}

	if ctx.ExistingTopicID != "" && ctx.TopicTitle != "" {
		return GuardResult{
			Allowed: false,
			Reason:  "destination must be either an existing topic or a new title, not both",
		}
	}

	if ctx.ExistingTopicID == "" && ctx.TopicTitle == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "destination requires an existing topic id or a new topic title",
		}
	}

	if ctx.ExistingTopicID != "" && !ctx.TopicExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("destination topic %s not found", ctx.ExistingTopicID),
		}
	}

	return GuardResult{Allowed: true}
}

// ExecuteContext provides context for pipeline execution guards.
type ExecuteContext struct {
	ArchiveID        string
	State            string
	ArchivedMessages int
	TotalMessages    int
}

// CanExecute evaluates whether the pipeline may run an archive.
// Rules:
// - State must be a known archive state
// - The checkpoint must satisfy 0 <= archived <= total
func CanExecute(ctx ExecuteContext) GuardResult {
	if !ValidState(ctx.State) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("archive %s has unknown state %q", ctx.ArchiveID, ctx.State),
		}
	}

	if ctx.ArchivedMessages < 0 || ctx.ArchivedMessages > ctx.TotalMessages {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("archive %s checkpoint %d is outside [0, %d]",
				ctx.ArchiveID, ctx.ArchivedMessages, ctx.TotalMessages),
		}
	}

	return GuardResult{Allowed: true}
}
