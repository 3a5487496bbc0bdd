package replacement

import (
	"math/rand"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRUOrder", func() {
	var (
		order *LRUOrder
	)

	BeforeEach(func() {
		order = NewLRUOrder(4, 4)
	})

	It("should start with the identity order", func() {
		Expect(order.Order(0)).To(Equal([]int{0, 1, 2, 3}))
		Expect(order.Order(2)).To(Equal([]int{8, 9, 10, 11}))
		Expect(order.LeastRecentlyUsed(3)).To(Equal(12))
	})

	It("should move a visited block to the back", func() {
		order.MarkUsed(5)

		Expect(order.Order(1)).To(Equal([]int{4, 6, 7, 5}))
		Expect(order.LeastRecentlyUsed(1)).To(Equal(4))
	})

	It("should move the front block to the back", func() {
		order.MarkUsed(4)

		Expect(order.Order(1)).To(Equal([]int{5, 6, 7, 4}))
		Expect(order.LeastRecentlyUsed(1)).To(Equal(5))
	})

	It("should keep the order when the back block is visited", func() {
		order.MarkUsed(7)

		Expect(order.Order(1)).To(Equal([]int{4, 5, 6, 7}))
	})

	It("should not touch other sets", func() {
		order.MarkUsed(5)

		Expect(order.Order(0)).To(Equal([]int{0, 1, 2, 3}))
		Expect(order.Order(2)).To(Equal([]int{8, 9, 10, 11}))
	})

	It("should restore the identity order on reset", func() {
		order.MarkUsed(0)
		order.MarkUsed(1)

		order.Reset()

		Expect(order.Order(0)).To(Equal([]int{0, 1, 2, 3}))
	})

	It("should handle single-block sets", func() {
		order = NewLRUOrder(8, 1)

		order.MarkUsed(3)

		Expect(order.Order(3)).To(Equal([]int{3}))
		Expect(order.LeastRecentlyUsed(3)).To(Equal(3))
	})

	It("should remain a permutation after random visits", func() {
		r := rand.New(rand.NewSource(1))

		for i := 0; i < 1000; i++ {
			order.MarkUsed(r.Intn(16))
		}

		for s := 0; s < 4; s++ {
			ids := order.Order(s)
			sort.Ints(ids)
			Expect(ids).To(Equal([]int{4 * s, 4*s + 1, 4*s + 2, 4*s + 3}))
		}
	})

	It("should agree with a reference queue", func() {
		r := rand.New(rand.NewSource(7))
		reference := []int{0, 1, 2, 3}

		for i := 0; i < 200; i++ {
			id := r.Intn(4)
			order.MarkUsed(id)

			newRef := []int{}
			for _, b := range reference {
				if b != id {
					newRef = append(newRef, b)
				}
			}
			reference = append(newRef, id)

			Expect(order.Order(0)).To(Equal(reference))
		}
	})

	It("should panic on out-of-range ids", func() {
		Expect(func() { order.MarkUsed(16) }).To(Panic())
		Expect(func() { order.LeastRecentlyUsed(-1) }).To(Panic())
	})
})
