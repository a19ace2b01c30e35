package transform

import (
	"github.com/eringen/contentkit/content"
)

// DeriveState reports the editorial state of e. Entities that were never
// saved are new. Non-routed content has no draft concept and is always
// published; routed content is published once it has a publish date, or
// draft when fetched as a draft.
func DeriveState(e content.Entity, routed, draftFetch bool) content.State {
	if e.Created.IsZero() || e.Created.Unix() == 0 {
		return content.StateNew
	}
	if !routed {
		return content.StatePublished
	}
	if e.Published == nil {
		return content.StateUnpublished
	}
	if draftFetch {
		return content.StateDraft
	}
	return content.StatePublished
}
