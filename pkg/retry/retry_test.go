// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package retry_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/metrics"
	"github.com/vmware-tanzu/vm-reconciler/pkg/retry"
)

// failNTimes returns a function that fails with an error of kind the first n
// times it is called, and a pointer to the number of calls.
func failNTimes(n int, kind pkgerr.Kind) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= n {
			return pkgerr.New(kind, "op", errors.New("fault"))
		}
		return nil
	}, &calls
}

var _ = Describe("Policy", func() {
	var (
		ctx    context.Context
		policy retry.Policy
	)

	BeforeEach(func() {
		ctx = context.Background()
		policy = retry.Policy{
			MaxAttempts:           5,
			NotConfiguredAttempts: 3,
			Factor:                2,
		}
	})

	DescribeTable("transient faults",
		func(k int, kind pkgerr.Kind) {
			fn, calls := failNTimes(k, kind)
			err := policy.Do(ctx, "clone", fn)
			if k < policy.MaxAttempts {
				Expect(err).ToNot(HaveOccurred())
				Expect(*calls).To(Equal(k + 1))
				return
			}
			Expect(pkgerr.IsExhausted(err)).To(BeTrue())
			Expect(*calls).To(Equal(policy.MaxAttempts))
			Expect(err.Error()).To(ContainSubstring("clone failed after 5 attempts"))
		},
		Entry("no faults", 0, pkgerr.KindTransient),
		Entry("one fault", 1, pkgerr.KindTransient),
		Entry("max-1 faults", 4, pkgerr.KindTransient),
		Entry("max faults", 5, pkgerr.KindTransient),
		Entry("more than max faults", 9, pkgerr.KindTransient),
		Entry("vanished objects", 2, pkgerr.KindVanished),
		Entry("too many vanished objects", 6, pkgerr.KindVanished),
	)

	When("the machine is not configured", func() {
		It("should succeed within the bound", func() {
			fn, calls := failNTimes(2, pkgerr.KindNotConfigured)
			Expect(policy.Do(ctx, "bulkQuery", fn)).To(Succeed())
			Expect(*calls).To(Equal(3))
		})
		It("should report the machine as still booting after the bound", func() {
			fn, calls := failNTimes(10, pkgerr.KindNotConfigured)
			err := policy.Do(ctx, "bulkQuery", fn)
			Expect(pkgerr.IsStillBooting(err)).To(BeTrue())
			Expect(*calls).To(Equal(3))
		})
	})

	DescribeTable("faults that are never retried",
		func(kind pkgerr.Kind) {
			fn, calls := failNTimes(1, kind)
			err := policy.Do(ctx, "startGuestProgram", fn)
			Expect(err).To(HaveOccurred())
			Expect(pkgerr.KindOf(err)).To(Equal(kind))
			Expect(*calls).To(Equal(1))
		},
		Entry("guest", pkgerr.KindGuest),
		Entry("internal", pkgerr.KindInternal),
		Entry("user", pkgerr.KindUser),
		Entry("not found", pkgerr.KindNotFound),
	)

	It("should return unclassified errors unchanged", func() {
		orig := errors.New("plain")
		calls := 0
		err := policy.Do(ctx, "op", func(context.Context) error {
			calls++
			return orig
		})
		Expect(err).To(BeIdenticalTo(orig))
		Expect(calls).To(Equal(1))
	})

	It("should stop waiting when the context is done", func() {
		policy.BaseDelay = time.Hour
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		fn, calls := failNTimes(3, pkgerr.KindTransient)
		err := policy.Do(cctx, "powerOn", fn)
		Expect(err).To(MatchError(context.Canceled))
		Expect(*calls).To(Equal(1))
	})

	It("should cap the delay", func() {
		policy.BaseDelay = time.Millisecond
		policy.MaxDelay = 2 * time.Millisecond
		policy.Factor = 100
		fn, _ := failNTimes(4, pkgerr.KindTransient)
		start := time.Now()
		Expect(policy.Do(ctx, "op", fn)).To(Succeed())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("should record attempts in the metrics", func() {
		policy = policy.WithMetrics(metrics.NewReconcilerMetrics())
		fn, calls := failNTimes(1, pkgerr.KindTransient)
		Expect(policy.Do(ctx, "reconfigure", fn)).To(Succeed())
		Expect(*calls).To(Equal(2))
	})

	Describe("Value", func() {
		It("should return the produced value", func() {
			calls := 0
			v, err := retry.Value(ctx, policy, "findMachine", func(context.Context) (string, error) {
				calls++
				if calls == 1 {
					return "", pkgerr.New(pkgerr.KindTransient, "findMachine", nil)
				}
				return "vm-42", nil
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal("vm-42"))
		})
	})

	Describe("FromConfig", func() {
		It("should copy the configuration", func() {
			c := pkgcfg.Default().Retry
			p := retry.FromConfig(c)
			Expect(p.MaxAttempts).To(Equal(10))
			Expect(p.MaxDelay).To(Equal(15 * time.Second))
		})
	})
})
