package hooking

import (
	"sync"
)

// TagCountTracer counts how many times each tag is attached to a task.
type TagCountTracer struct {
	lock     sync.Mutex
	tagNames []string
	tagCount map[string]uint64
}

// NewTagCountTracer creates a new TagCountTracer
func NewTagCountTracer() *TagCountTracer {
	t := &TagCountTracer{
		tagCount: make(map[string]uint64),
	}

	return t
}

// Func counts the tags.
func (t *TagCountTracer) Func(ctx HookCtx) {
	if ctx.Pos != HookPosTaskTag {
		return
	}

	t.TagTask(ctx.Item.(TaskTag))
}

// GetTagNames returns all the tag names collected, in the order they are
// first seen.
func (t *TagCountTracer) GetTagNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.tagNames))
	copy(names, t.tagNames)

	return names
}

// GetTagCount returns the number of times a tag is recorded.
func (t *TagCountTracer) GetTagCount(tagName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.tagCount[tagName]
}

// TagTask tags a task with a certain tag.
func (t *TagCountTracer) TagTask(taskTag TaskTag) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.countTag(taskTag)
}

func (t *TagCountTracer) countTag(taskTag TaskTag) {
	_, ok := t.tagCount[taskTag.What]
	if !ok {
		t.tagNames = append(t.tagNames, taskTag.What)
	}

	t.tagCount[taskTag.What]++
}
