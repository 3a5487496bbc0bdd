package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachemodel/mem/cache"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		o      cache.Organization
		router http.Handler
	)

	BeforeEach(func() {
		var err error

		m = NewMonitor()
		o, err = cache.MakeBuilder().
			WithBlockCount(4).
			BuildDirectMapped("DirectMapped")
		Expect(err).NotTo(HaveOccurred())

		m.RegisterOrganization(o)
		router = m.Router()
	})

	It("should list organizations", func() {
		w := get(router, "/api/list_organizations")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`["DirectMapped"]`))
	})

	It("should serialize an organization", func() {
		o.Classify(0x40, cache.Read)

		w := get(router, "/api/organization/DirectMapped")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for unknown organizations", func() {
		w := get(router, "/api/organization/Unknown")

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should report an empty result list without a source", func() {
		w := get(router, "/api/results")

		Expect(w.Body.String()).To(MatchJSON(`[]`))
	})

	It("should report results", func() {
		m.RegisterResultSource(func() any {
			return map[string]uint64{"read_requests": 3}
		})

		w := get(router, "/api/results")

		Expect(w.Body.String()).To(MatchJSON(`{"read_requests": 3}`))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("trace", 10)
		bar.IncrementFinished(4)
		m.CreateProgressBar("other", 5)

		w := get(router, "/api/progress")

		var snapshots []ProgressSnapshot
		Expect(json.Unmarshal(w.Body.Bytes(), &snapshots)).To(Succeed())
		Expect(snapshots).To(HaveLen(2))
		Expect(snapshots[0].Name).To(Equal("trace"))
		Expect(snapshots[0].Finished).To(Equal(uint64(4)))
		Expect(snapshots[0].Total).To(Equal(uint64(10)))

		m.CompleteProgressBar(bar)

		w = get(router, "/api/progress")
		Expect(json.Unmarshal(w.Body.Bytes(), &snapshots)).To(Succeed())
		Expect(snapshots).To(HaveLen(1))
		Expect(snapshots[0].Name).To(Equal("other"))
	})

	It("should report resource usage", func() {
		w := get(router, "/api/resource")

		var rsp resourceRsp
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should ignore ports below 1000", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})

	It("should start a server", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Get(url + "/api/list_organizations")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
