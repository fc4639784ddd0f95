package model

// Confirm asks the operator to approve a destructive action described by
// prompt. Returning false aborts the action.
type Confirm func(prompt string) bool

// AlwaysConfirm approves every prompt. Used by the non-interactive variants.
func AlwaysConfirm(string) bool { return true }
