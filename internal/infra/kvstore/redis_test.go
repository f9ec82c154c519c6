package kvstore_test

import (
	"context"
	"dronefleet/internal/infra/kvstore"
	mockkvstore "dronefleet/test/unit/doubles/infra/kvstore"
	"errors"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("RedisStore", func() {
	var (
		ctrl       *gomock.Controller
		mockClient *mockkvstore.MockRedisClient
		store      *kvstore.RedisStore
		ctx        context.Context
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockClient = mockkvstore.NewMockRedisClient(ctrl)
		store = kvstore.NewRedisStoreWithClient(mockClient, &kvstore.RedisConfig{KeyPrefix: "fleetctl:"})
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.It("should prefix keys on get", func() {
		mockClient.EXPECT().Get(ctx, "fleetctl:userToken").Return(redis.NewStringResult("abc", nil))

		value, err := store.Get(ctx, "userToken")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(value).To(gomega.Equal("abc"))
	})

	ginkgo.It("should map redis.Nil to ErrKeyNotFound", func() {
		mockClient.EXPECT().Get(ctx, "fleetctl:username").Return(redis.NewStringResult("", redis.Nil))

		_, err := store.Get(ctx, "username")
		gomega.Expect(err).To(gomega.MatchError(kvstore.ErrKeyNotFound))
	})

	ginkgo.It("should wrap other failures", func() {
		failure := errors.New("connection reset")
		mockClient.EXPECT().Get(ctx, "fleetctl:username").Return(redis.NewStringResult("", failure))

		_, err := store.Get(ctx, "username")
		gomega.Expect(err).To(gomega.MatchError(failure))
		gomega.Expect(err).NotTo(gomega.MatchError(kvstore.ErrKeyNotFound))
	})

	ginkgo.It("should set without expiration", func() {
		mockClient.EXPECT().Set(ctx, "fleetctl:userToken", "abc", gomock.Eq(time.Duration(0))).Return(redis.NewStatusResult("OK", nil))

		gomega.Expect(store.Set(ctx, "userToken", "abc")).To(gomega.Succeed())
	})

	ginkgo.It("should delete every prefixed key in one call", func() {
		mockClient.EXPECT().Del(ctx, "fleetctl:userToken", "fleetctl:username").Return(redis.NewIntResult(2, nil))

		gomega.Expect(store.Delete(ctx, "userToken", "username")).To(gomega.Succeed())
	})
})
