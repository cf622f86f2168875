// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package delivery_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/textbridge/internal/host"
)

var _ = Describe("Binding bundled hosts", func() {
	DescribeTable("reports capabilities",
		func(profile string, capable, title bool) {
			env := setupTestEnv(profile)
			DeferCleanup(env.cleanup)

			b := env.adapter.Binding()
			Expect(b.Capable()).To(Equal(capable))
			Expect(b.CanMakeTitle()).To(Equal(title))

			status, _ := env.get("/healthz/readiness")
			if capable {
				Expect(status).To(Equal(http.StatusOK))
			} else {
				Expect(status).To(Equal(http.StatusServiceUnavailable))
			}
		},
		Entry("CraftBukkit 1.8 with titles", "v1_8_R3", true, true),
		Entry("CraftBukkit 1.7 without titles", "v1_7_R4", true, false),
		Entry("CraftBukkit 1.12 with obfuscated actions", "v1_12_R1", true, true),
		Entry("unversioned CraftBukkit", "legacy", true, false),
		Entry("non-CraftBukkit server", "glowstone", false, false),
	)
})

var _ = Describe("Console delivery", func() {
	var env *testEnv

	Context("on a host with titles", func() {
		BeforeEach(func() {
			env = setupTestEnv("v1_8_R3")
			DeferCleanup(env.cleanup)
		})

		It("delivers one shared packet to every player", func() {
			out, err := env.console.Exec(env.ctx, `say "welcome" in gold`)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("handled 3 of 3"))

			got := env.delivered()
			Expect(got).To(HaveLen(3))
			Expect(got[0].owner).To(Equal("Notch"))
			Expect(got[1].packet).To(BeIdenticalTo(got[0].packet))
			Expect(got[2].packet).To(BeIdenticalTo(got[0].packet))
		})

		It("narrows recipients by pattern", func() {
			out, err := env.console.Exec(env.ctx, `bar "low health" in red to "D*"`)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("handled 1 of 1"))

			got := env.delivered()
			Expect(got).To(HaveLen(1))
			Expect(got[0].owner).To(Equal("Dinnerbone"))
			action, ok := got[0].packet.Get("action")
			Expect(ok).To(BeTrue())
			Expect(action.(*host.EnumConstant).Name).To(Equal("ACTIONBAR"))
		})

		It("exposes command and delivery metrics", func() {
			_, err := env.console.Exec(env.ctx, `title times 10 70 20`)
			Expect(err).NotTo(HaveOccurred())
			_, err = env.console.Exec(env.ctx, `title reset`)
			Expect(err).To(HaveOccurred())

			status, body := env.get("/metrics")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`textbridge_commands_total{command="title",status="ok"} 1`))
			Expect(body).To(ContainSubstring(`textbridge_commands_total{command="title",status="error"} 1`))
			Expect(body).To(ContainSubstring(`textbridge_profile_info{profile="v1_8_R3",version="v1_8_R3"} 1`))
			Expect(body).To(ContainSubstring("textbridge_deliveries_total"))
			Expect(body).To(ContainSubstring("textbridge_binding_state"))
		})
	})

	Context("on a host without titles", func() {
		BeforeEach(func() {
			env = setupTestEnv("v1_7_R4")
			DeferCleanup(env.cleanup)
		})

		It("sends action bars as chat", func() {
			_, err := env.console.Exec(env.ctx, `bar "hello"`)
			Expect(err).NotTo(HaveOccurred())

			got := env.delivered()
			Expect(got).To(HaveLen(2))
			Expect(got[0].packet.Class().SimpleName()).To(Equal("PacketPlayOutChat"))
		})

		It("leaves titles unhandled", func() {
			out, err := env.console.Exec(env.ctx, `title times 1 2 3`)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("handled 0 of 2; unhandled: Notch, Herobrine"))
			Expect(env.delivered()).To(BeEmpty())
		})
	})

	Context("on an obfuscated host", func() {
		BeforeEach(func() {
			env = setupTestEnv("v1_12_R1")
			DeferCleanup(env.cleanup)
		})

		It("finds title actions by ordinal", func() {
			_, err := env.console.Exec(env.ctx, `title times 10 70 20 to "Grumm"`)
			Expect(err).NotTo(HaveOccurred())

			got := env.delivered()
			Expect(got).To(HaveLen(1))
			action, _ := got[0].packet.Get("action")
			Expect(action.(*host.EnumConstant).Ordinal).To(Equal(1))
		})
	})

	Context("on an incompatible host", func() {
		BeforeEach(func() {
			env = setupTestEnv("glowstone")
			DeferCleanup(env.cleanup)
		})

		It("accepts sends without delivering", func() {
			out, err := env.console.Exec(env.ctx, `say "anyone?"`)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("handled 0 of 1; unhandled: steve"))
			Expect(env.delivered()).To(BeEmpty())
		})
	})
})
