package cache

import (
	"fmt"

	"github.com/sarchlab/cachemodel/sim/hooking"
)

// HookPosAccess marks that an organization has classified an access. The hook
// item is an AccessDetail.
var HookPosAccess = &hooking.HookPos{Name: "CacheAccess"}

// Tags attached to access tasks.
const (
	TagHit     = "hit"
	TagMiss    = "miss"
	TagReplace = "replace"
)

// AccessDetail describes the outcome of one classified access.
type AccessDetail struct {
	TaskID       string
	Organization string
	Kind         AccessKind
	Address      uint64
	Tag          uint64
	SetID        int
	BlockID      int
	Hit          bool

	// Replaced is set when a miss overwrote a valid block, whose tag is
	// ReplacedTag.
	Replaced    bool
	ReplacedTag uint64
}

// Each traced access is a task that starts before the lookup and ends right
// after the block is filled. The hit, miss, and replace tags and the
// HookPosAccess detail follow the end of the task so that the time between
// start and end covers only the lookup.

func (o *organization) traceAccessStart(taskID string, kind AccessKind) {
	ctx := hooking.HookCtx{
		Domain: o,
		Pos:    hooking.HookPosTaskStart,
		Item: hooking.TaskStart{
			ID:    taskID,
			Kind:  kind.String(),
			What:  "cache_access",
			Where: o.name,
		},
	}

	o.InvokeHook(ctx)
}

func (o *organization) traceAccess(detail AccessDetail) {
	what := TagMiss
	if detail.Hit {
		what = TagHit
	}

	o.tagAccess(detail.TaskID, what, fmt.Sprintf("0x%x", detail.Address))

	if detail.Replaced {
		o.tagAccess(detail.TaskID, TagReplace,
			fmt.Sprintf("0x%x", detail.ReplacedTag))
	}

	ctx := hooking.HookCtx{
		Domain: o,
		Pos:    HookPosAccess,
		Item:   detail,
	}

	o.InvokeHook(ctx)
}

func (o *organization) tagAccess(taskID, what, detail string) {
	ctx := hooking.HookCtx{
		Domain: o,
		Pos:    hooking.HookPosTaskTag,
		Item: hooking.TaskTag{
			TaskID: taskID,
			What:   what,
			Detail: detail,
		},
	}

	o.InvokeHook(ctx)
}

func (o *organization) traceAccessEnd(taskID string) {
	ctx := hooking.HookCtx{
		Domain: o,
		Pos:    hooking.HookPosTaskEnd,
		Item: hooking.TaskEnd{
			ID: taskID,
		},
	}

	o.InvokeHook(ctx)
}
