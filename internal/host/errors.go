// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"github.com/samber/oops"
)

// Error codes for host lookup and invocation failures.
const (
	CodeClassNotFound    = "CLASS_NOT_FOUND"
	CodeMemberNotFound   = "MEMBER_NOT_FOUND"
	CodeInvocationFailed = "INVOCATION_FAILED"
	CodeDuplicateClass   = "DUPLICATE_CLASS"
)

// ErrClassNotFound creates an error for a class that the runtime does not define.
func ErrClassNotFound(name string) error {
	return oops.In("host").
		Code(CodeClassNotFound).
		With("class", name).
		Errorf("class not found: %s", name)
}

// ErrMemberNotFound creates an error for a method, field, or constructor
// missing from a class.
func ErrMemberNotFound(class, kind, name string, params []string) error {
	return oops.In("host").
		Code(CodeMemberNotFound).
		With("class", class).
		With("kind", kind).
		With("member", name).
		With("params", params).
		Errorf("%s not found: %s.%s", kind, class, name)
}

func errInvocation(member string) oops.OopsErrorBuilder {
	return oops.In("host").
		Code(CodeInvocationFailed).
		With("member", member)
}
