package model

// PendingState is the lifecycle state of one governance track.
type PendingState string

const (
	PendingNone   PendingState = "none"
	PendingActive PendingState = "pending"
)

// Track holds one proposed change (tax rate or module) awaiting confirmation.
// Pending is true exactly when Value is set.
type Track[T any] struct {
	Pending       bool    `json:"pending"`
	Value         *T      `json:"value"`
	ConfirmableAt *uint64 `json:"confirmable_at"`
}

func (t Track[T]) State() PendingState {
	if t.Pending {
		return PendingActive
	}
	return PendingNone
}

// Propose moves the track to pending. It reports whether an in-flight proposal was replaced.
func (t *Track[T]) Propose(value T, confirmableAt uint64) bool {
	replaced := t.Pending
	v := value
	at := confirmableAt
	t.Pending = true
	t.Value = &v
	t.ConfirmableAt = &at
	return replaced
}

// Confirm returns the pending value and resets the track. ok is false when nothing was pending.
func (t *Track[T]) Confirm() (value T, ok bool) {
	if !t.Pending || t.Value == nil {
		t.Clear()
		return value, false
	}
	value = *t.Value
	t.Clear()
	return value, true
}

// Cancel discards the pending value. It reports whether anything was pending.
func (t *Track[T]) Cancel() bool {
	was := t.Pending
	t.Clear()
	return was
}

func (t *Track[T]) Clear() {
	t.Pending = false
	t.Value = nil
	t.ConfirmableAt = nil
}
