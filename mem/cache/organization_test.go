package cache

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachemodel/sim/hooking"
)

func mustBuild(b Builder, kind Kind) Organization {
	o, err := b.Build(kind.String(), kind)
	Expect(err).NotTo(HaveOccurred())

	return o
}

func classifyAll(o Organization, addrs []uint64) []bool {
	results := make([]bool, 0, len(addrs))
	for _, a := range addrs {
		results = append(results, o.Classify(a, Read))
	}

	return results
}

func randomAddresses(seed int64, n int, footprint uint64) []uint64 {
	r := rand.New(rand.NewSource(seed))

	addrs := make([]uint64, n)
	for i := range addrs {
		addrs[i] = uint64(r.Int63n(int64(footprint)))
	}

	return addrs
}

var _ = Describe("Builder", func() {
	It("should build all the organizations with the default geometry", func() {
		b := MakeBuilder()

		for _, kind := range Kinds {
			o := mustBuild(b, kind)
			Expect(o.Kind()).To(Equal(kind))
			Expect(o.Name()).To(Equal(kind.String()))
			Expect(o.Blocks()).To(HaveLen(512))
		}

		Expect(b.Geometry(FullyAssociative).GroupSize).To(Equal(512))
		Expect(b.Geometry(DirectMapped).GroupSize).To(Equal(1))
		Expect(b.Geometry(SetAssociative).GroupSize).To(Equal(4))
		Expect(b.Geometry(SetAssociative).NumSets()).To(Equal(128))
	})

	It("should reject a group size that does not divide the blocks", func() {
		_, err := MakeBuilder().WithGroupSize(3).BuildSetAssociative("sa")

		var configErr *ConfigurationError
		Expect(errors.As(err, &configErr)).To(BeTrue())
		Expect(configErr.Kind).To(Equal(SetAssociative))
		Expect(configErr.Geometry.GroupSize).To(Equal(3))
	})

	It("should reject a set count that is not a power of two", func() {
		_, err := MakeBuilder().
			WithBlockCount(24).
			WithGroupSize(2).
			BuildSetAssociative("sa")

		var configErr *ConfigurationError
		Expect(errors.As(err, &configErr)).To(BeTrue())
		Expect(configErr.Error()).To(ContainSubstring("power of two"))
	})

	It("should reject a direct-mapped cache with non power of two blocks",
		func() {
			b := MakeBuilder().WithBlockCount(24)

			_, err := b.BuildDirectMapped("dm")
			Expect(err).To(HaveOccurred())

			_, err = b.BuildFullyAssociative("fa")
			Expect(err).NotTo(HaveOccurred())
		})

	It("should reject a cache without blocks", func() {
		_, err := MakeBuilder().WithBlockCount(0).BuildFullyAssociative("fa")

		var configErr *ConfigurationError
		Expect(errors.As(err, &configErr)).To(BeTrue())
	})
})

var _ = Describe("Direct-mapped organization", func() {
	var (
		o Organization
	)

	BeforeEach(func() {
		o = mustBuild(MakeBuilder().
			WithBlockCount(4).
			WithLog2BlockSize(2), DirectMapped)
	})

	It("should replace the only candidate block on conflict", func() {
		results := classifyAll(o, []uint64{0, 4, 8, 12, 16})
		Expect(results).To(Equal([]bool{false, false, false, false, false}))

		blocks := o.Blocks()
		Expect(blocks[0].IsValid).To(BeTrue())
		Expect(blocks[0].Tag).To(Equal(uint64(1)))

		Expect(o.Classify(0, Read)).To(BeFalse())
	})

	It("should hit within the same block", func() {
		Expect(o.Classify(8, Read)).To(BeFalse())
		Expect(o.Classify(9, Write)).To(BeTrue())
		Expect(o.Classify(11, Read)).To(BeTrue())
	})
})

var _ = Describe("Fully associative organization", func() {
	It("should evict the least recently used line", func() {
		o := mustBuild(MakeBuilder().
			WithBlockCount(2).
			WithLog2BlockSize(6), FullyAssociative)

		a, b, c := uint64(0x000), uint64(0x040), uint64(0x080)

		Expect(o.Classify(a, Read)).To(BeFalse())
		Expect(o.Classify(b, Read)).To(BeFalse())
		Expect(o.Classify(a, Read)).To(BeTrue())
		Expect(o.Classify(c, Read)).To(BeFalse())

		tags := []uint64{}
		for _, block := range o.Blocks() {
			tags = append(tags, block.Tag)
		}
		Expect(tags).To(ConsistOf(a>>6, c>>6))

		Expect(o.Classify(b, Read)).To(BeFalse())
	})

	DescribeTable("should keep exactly N lines",
		func(n int) {
			o := mustBuild(MakeBuilder().
				WithBlockCount(n).
				WithLog2BlockSize(6), FullyAssociative)

			for i := 0; i < n; i++ {
				Expect(o.Classify(uint64(i)<<6, Read)).To(BeFalse())
			}
			Expect(o.Classify(0, Read)).To(BeTrue())

			o.Reset()

			for i := 0; i <= n; i++ {
				Expect(o.Classify(uint64(i)<<6, Read)).To(BeFalse())
			}
			Expect(o.Classify(0, Read)).To(BeFalse())
		},
		Entry("1 block", 1),
		Entry("2 blocks", 2),
		Entry("7 blocks", 7),
		Entry("64 blocks", 64),
	)
})

var _ = Describe("Set-associative organization", func() {
	var (
		o Organization
	)

	BeforeEach(func() {
		o = mustBuild(MakeBuilder().
			WithBlockCount(8).
			WithLog2BlockSize(0).
			WithGroupSize(2), SetAssociative)
	})

	It("should evict the least recently used block of the set", func() {
		Expect(o.Classify(0, Read)).To(BeFalse())
		Expect(o.Classify(4, Read)).To(BeFalse())
		Expect(o.Classify(0, Read)).To(BeTrue())
		Expect(o.Classify(8, Read)).To(BeFalse())
		Expect(o.Classify(0, Read)).To(BeTrue())
		Expect(o.Classify(4, Read)).To(BeFalse())
	})

	It("should fill the set in block order when cold", func() {
		o.Classify(1, Read)
		o.Classify(5, Read)

		blocks := o.Blocks()
		Expect(blocks[2].IsValid).To(BeTrue())
		Expect(blocks[2].Tag).To(Equal(uint64(0)))
		Expect(blocks[3].IsValid).To(BeTrue())
		Expect(blocks[3].Tag).To(Equal(uint64(1)))
		Expect(blocks[0].IsValid).To(BeFalse())
	})

	It("should not let sets interfere", func() {
		o.Classify(0, Read)
		o.Classify(4, Read)
		o.Classify(1, Read)
		o.Classify(5, Read)
		o.Classify(9, Read)

		Expect(o.Classify(0, Read)).To(BeTrue())
		Expect(o.Classify(4, Read)).To(BeTrue())
	})
})

var _ = Describe("All organizations", func() {
	It("should hit when the same address is repeated", func() {
		b := MakeBuilder().WithBlockCount(16).WithGroupSize(4)
		addrs := randomAddresses(3, 500, 1<<16)

		for _, kind := range Kinds {
			o := mustBuild(b, kind)

			for _, a := range addrs {
				o.Classify(a, Write)
				Expect(o.Classify(a, Read)).To(BeTrue())
			}
		}
	})

	It("should behave as direct-mapped with a group size of 1", func() {
		b := MakeBuilder().WithBlockCount(64).WithGroupSize(1)
		addrs := randomAddresses(11, 5000, 1<<14)

		sa := mustBuild(b, SetAssociative)
		dm := mustBuild(b, DirectMapped)

		Expect(classifyAll(sa, addrs)).To(Equal(classifyAll(dm, addrs)))
		Expect(sa.Blocks()).To(Equal(dm.Blocks()))
	})

	It("should behave as fully associative with a single set", func() {
		b := MakeBuilder().WithBlockCount(32).WithGroupSize(32)
		addrs := randomAddresses(13, 5000, 1<<12)

		sa := mustBuild(b, SetAssociative)
		fa := mustBuild(b, FullyAssociative)

		Expect(classifyAll(sa, addrs)).To(Equal(classifyAll(fa, addrs)))
		Expect(sa.Blocks()).To(Equal(fa.Blocks()))
	})

	It("should start over after reset", func() {
		for _, kind := range Kinds {
			o := mustBuild(MakeBuilder().WithBlockCount(8).WithGroupSize(2), kind)
			addrs := randomAddresses(5, 200, 1<<12)

			first := classifyAll(o, addrs)
			o.Reset()
			second := classifyAll(o, addrs)

			Expect(second).To(Equal(first))
		}
	})
})

var _ = Describe("Access hooks", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		o        Organization
		ctxs     []hooking.HookCtx
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)
		o = mustBuild(MakeBuilder().
			WithBlockCount(4).
			WithLog2BlockSize(2), DirectMapped)
		o.AcceptHook(hook)

		ctxs = nil
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx hooking.HookCtx) { ctxs = append(ctxs, ctx) }).
			AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should trace a miss", func() {
		o.Classify(16, Write)

		Expect(ctxs).To(HaveLen(4))
		Expect(ctxs[0].Pos).To(Equal(hooking.HookPosTaskStart))
		Expect(ctxs[0].Item).To(Equal(hooking.TaskStart{
			ID:    "1",
			Kind:  "write",
			What:  "cache_access",
			Where: "DirectMapped",
		}))
		Expect(ctxs[1].Pos).To(Equal(hooking.HookPosTaskEnd))
		Expect(ctxs[1].Item).To(Equal(hooking.TaskEnd{ID: "1"}))
		Expect(ctxs[1].Domain.Name()).To(Equal("DirectMapped"))
		Expect(ctxs[2].Pos).To(Equal(hooking.HookPosTaskTag))
		Expect(ctxs[2].Item).To(Equal(hooking.TaskTag{
			TaskID: "1",
			What:   TagMiss,
			Detail: "0x10",
		}))
		Expect(ctxs[3].Pos).To(Equal(HookPosAccess))
		Expect(ctxs[3].Item).To(Equal(AccessDetail{
			TaskID:       "1",
			Organization: "DirectMapped",
			Kind:         Write,
			Address:      16,
			Tag:          1,
			SetID:        0,
			BlockID:      0,
		}))
	})

	It("should end the task before tagging it", func() {
		o.Classify(0, Read)
		o.Classify(0, Read)

		positions := []*hooking.HookPos{}
		for _, ctx := range ctxs {
			positions = append(positions, ctx.Pos)
		}

		Expect(positions).To(Equal([]*hooking.HookPos{
			hooking.HookPosTaskStart,
			hooking.HookPosTaskEnd,
			hooking.HookPosTaskTag,
			HookPosAccess,
			hooking.HookPosTaskStart,
			hooking.HookPosTaskEnd,
			hooking.HookPosTaskTag,
			HookPosAccess,
		}))
	})

	It("should tag replacements of valid blocks", func() {
		o.Classify(0, Read)
		ctxs = nil

		o.Classify(16, Read)

		Expect(ctxs).To(HaveLen(5))
		Expect(ctxs[1].Pos).To(Equal(hooking.HookPosTaskEnd))
		Expect(ctxs[2].Item.(hooking.TaskTag).What).To(Equal(TagMiss))
		Expect(ctxs[3].Item).To(Equal(hooking.TaskTag{
			TaskID: "2",
			What:   TagReplace,
			Detail: "0x0",
		}))
		detail := ctxs[4].Item.(AccessDetail)
		Expect(detail.TaskID).To(Equal("2"))
		Expect(detail.Replaced).To(BeTrue())
		Expect(detail.ReplacedTag).To(Equal(uint64(0)))
	})

	It("should trace a hit", func() {
		o.Classify(4, Read)
		ctxs = nil

		o.Classify(4, Read)

		Expect(ctxs).To(HaveLen(4))
		Expect(ctxs[2].Item.(hooking.TaskTag).What).To(Equal(TagHit))
		Expect(ctxs[3].Item.(AccessDetail).Hit).To(BeTrue())
		Expect(ctxs[3].Item.(AccessDetail).BlockID).To(Equal(1))
	})
})

type steppingClock struct {
	now float64
}

func (c *steppingClock) Now() float64 {
	c.now++
	return c.now
}

// slowObserver stands for observers that take long to handle the outcome of
// an access.
type slowObserver struct {
	clock *steppingClock
}

func (h *slowObserver) Func(ctx hooking.HookCtx) {
	if ctx.Pos == hooking.HookPosTaskTag || ctx.Pos == HookPosAccess {
		h.clock.now += 100
	}
}

var _ = Describe("Access timing", func() {
	It("should not include the observers of the outcome", func() {
		clock := &steppingClock{}
		tracer := hooking.NewAverageTimeTracer(clock, nil)

		o := mustBuild(MakeBuilder().
			WithBlockCount(4).
			WithLog2BlockSize(2), SetAssociative)
		o.AcceptHook(tracer)
		o.AcceptHook(&slowObserver{clock: clock})

		o.Classify(0, Read)
		o.Classify(0, Write)
		o.Classify(64, Read)

		Expect(tracer.TotalCount()).To(Equal(uint64(3)))
		Expect(tracer.AverageTime()).To(Equal(1.0))
	})
})
