package kvstore_test

import (
	"context"
	"dronefleet/internal/infra/kvstore"
	"fmt"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var storeCounter int

func behavesLikeAStore(newStore func() kvstore.Store) {
	var (
		store kvstore.Store
		ctx   context.Context
	)

	ginkgo.BeforeEach(func() {
		store = newStore()
		ctx = context.Background()
	})

	ginkgo.It("should report missing keys", func() {
		_, err := store.Get(ctx, "userToken")
		gomega.Expect(err).To(gomega.MatchError(kvstore.ErrKeyNotFound))
	})

	ginkgo.It("should store and overwrite values", func() {
		gomega.Expect(store.Set(ctx, "userToken", "first")).To(gomega.Succeed())
		gomega.Expect(store.Set(ctx, "userToken", "second")).To(gomega.Succeed())

		value, err := store.Get(ctx, "userToken")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(value).To(gomega.Equal("second"))
	})

	ginkgo.It("should delete several keys at once", func() {
		gomega.Expect(store.Set(ctx, "userToken", "t")).To(gomega.Succeed())
		gomega.Expect(store.Set(ctx, "username", "ana")).To(gomega.Succeed())
		gomega.Expect(store.Set(ctx, "other", "kept")).To(gomega.Succeed())

		gomega.Expect(store.Delete(ctx, "userToken", "username")).To(gomega.Succeed())

		_, err := store.Get(ctx, "userToken")
		gomega.Expect(err).To(gomega.MatchError(kvstore.ErrKeyNotFound))
		_, err = store.Get(ctx, "username")
		gomega.Expect(err).To(gomega.MatchError(kvstore.ErrKeyNotFound))
		value, err := store.Get(ctx, "other")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(value).To(gomega.Equal("kept"))
	})

	ginkgo.It("should accept deleting missing keys", func() {
		gomega.Expect(store.Delete(ctx, "nothing")).To(gomega.Succeed())
		gomega.Expect(store.Delete(ctx)).To(gomega.Succeed())
	})
}

var _ = ginkgo.Describe("MemoryStore", func() {
	behavesLikeAStore(func() kvstore.Store { return kvstore.NewMemoryStore() })
})

var _ = ginkgo.Describe("SQLStore on sqlite", func() {
	behavesLikeAStore(func() kvstore.Store {
		storeCounter++
		dsn := fmt.Sprintf("file:session_%d?mode=memory&cache=shared", storeCounter)
		store, err := kvstore.NewSQLStore(kvstore.BackendSQLite, dsn)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return store
	})
})

var _ = ginkgo.Describe("Open", func() {
	ginkgo.It("should default to the memory backend", func() {
		store, err := kvstore.Open(kvstore.Config{})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(store).To(gomega.BeAssignableToTypeOf(&kvstore.MemoryStore{}))
	})

	ginkgo.It("should open a sqlite store", func() {
		store, err := kvstore.Open(kvstore.Config{Backend: kvstore.BackendSQLite, DSN: "file:open_test?mode=memory&cache=shared"})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(store).To(gomega.BeAssignableToTypeOf(&kvstore.SQLStore{}))
	})

	ginkgo.It("should reject unknown backends", func() {
		_, err := kvstore.Open(kvstore.Config{Backend: "etcd"})
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
