// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package errors_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
)

var _ = Describe("Error", func() {

	DescribeTable("Error",
		func(e error, expErr string) {
			Expect(e).To(MatchError(expErr))
		},

		Entry(
			"empty",
			&pkgerr.Error{Kind: pkgerr.KindInternal},
			"internal error",
		),
		Entry(
			"user error",
			pkgerr.Userf("/dc/vm/x", "invalid datastore %q", "ds9"),
			`/dc/vm/x: invalid datastore "ds9"`,
		),
		Entry(
			"exhausted",
			&pkgerr.Error{
				Kind:     pkgerr.KindExhausted,
				Op:       "clone",
				Attempts: 10,
				Err:      errors.New("host communication"),
			},
			"clone failed after 10 attempts: host communication",
		),
		Entry(
			"guest reason",
			&pkgerr.Error{
				Kind:  pkgerr.KindGuest,
				Op:    "startGuestProgram",
				Guest: pkgerr.GuestReasonInvalidLogin,
			},
			"startGuestProgram: the guest credentials are invalid",
		),
	)

	Describe("KindOf", func() {
		It("should find a wrapped error", func() {
			err := fmt.Errorf("outer: %w", pkgerr.New(pkgerr.KindTransient, "powerOn", nil))
			Expect(pkgerr.KindOf(err)).To(Equal(pkgerr.KindTransient))
		})
		It("should return unknown for plain errors", func() {
			Expect(pkgerr.KindOf(errors.New("plain"))).To(Equal(pkgerr.KindUnknown))
		})
	})

	Describe("WithPath", func() {
		It("should not modify the original error", func() {
			orig := pkgerr.New(pkgerr.KindGuest, "startGuestProgram", nil)
			err := pkgerr.WithPath(orig, "/dc/vm/x")
			Expect(orig.Path).To(BeEmpty())
			Expect(pkgerr.IsGuest(err)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("startGuestProgram /dc/vm/x"))
		})
		It("should wrap unclassified errors", func() {
			err := pkgerr.WithPath(errors.New("boom"), "/dc/vm/x")
			Expect(pkgerr.KindOf(err)).To(Equal(pkgerr.KindUnknown))
			Expect(err).To(MatchError("/dc/vm/x: boom"))
		})
		It("should return nil for nil", func() {
			Expect(pkgerr.WithPath(nil, "/dc/vm/x")).To(BeNil())
		})
	})

	Describe("Kind", func() {
		It("should have a name for every kind", func() {
			for k := pkgerr.KindUser; k <= pkgerr.KindExhausted; k++ {
				Expect(k.String()).ToNot(Equal("Unknown"))
			}
		})
	})
})
