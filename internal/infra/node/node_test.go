package node_test

import (
	"dronefleet/internal/infra/node"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Node", func() {
	ginkgo.Context("GetNodeInfo", func() {
		ginkgo.It("should return node information with all fields", func() {
			nodeInfo := node.GetNodeInfo()

			gomega.Expect(nodeInfo).ToNot(gomega.BeNil())
			gomega.Expect(nodeInfo.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(nodeInfo.Hostname).ToNot(gomega.BeEmpty())
			gomega.Expect(nodeInfo.Version).ToNot(gomega.BeEmpty())
			gomega.Expect(nodeInfo.CommitHash).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should return a valid UUID for node ID", func() {
			nodeInfo := node.GetNodeInfo()
			gomega.Expect(len(nodeInfo.ID)).To(gomega.Equal(36)) // UUID length
		})

		ginkgo.It("should return the same node ID on multiple calls (singleton)", func() {
			gomega.Expect(node.GetNodeInfo().ID).To(gomega.Equal(node.GetNodeInfo().ID))
		})
	})

	ginkgo.Context("UserAgent", func() {
		ginkgo.It("should carry the application name and version", func() {
			userAgent := node.GetNodeInfo().UserAgent()
			gomega.Expect(strings.HasPrefix(userAgent, "fleetctl/"+node.Version+" ")).To(gomega.BeTrue())
			gomega.Expect(userAgent).To(gomega.ContainSubstring(node.CommitHash))
		})
	})
})
