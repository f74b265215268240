// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync/atomic"
)

var ownerSeq atomic.Uint64

// Owner identifies the goroutine (and, when it is locked, the OS thread)
// allowed to use the graphics resources of a Manager.
//
// Go has no goroutine identity, so ownership is carried explicitly: the
// goroutine that creates an Owner keeps it to itself and passes it to
// every Manager call it makes.
type Owner struct {
	id   uint64
	name string
}

// NewOwner returns a fresh owner token. The name only appears in logs and
// error messages.
func NewOwner(name string) *Owner {
	return &Owner{id: ownerSeq.Add(1), name: name}
}

// String returns "name#id".
func (o *Owner) String() string {
	if o == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s#%d", o.name, o.id)
}
