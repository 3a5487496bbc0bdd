package cache

// Statistics counts the requests and the hits of one organization.
type Statistics struct {
	ReadRequests  uint64 `json:"read_requests"`
	WriteRequests uint64 `json:"write_requests"`
	ReadHits      uint64 `json:"read_hits"`
	WriteHits     uint64 `json:"write_hits"`
}

// Record counts a request and, if it hits, a hit.
func (s *Statistics) Record(kind AccessKind, hit bool) {
	switch kind {
	case Read:
		s.ReadRequests++
		if hit {
			s.ReadHits++
		}
	case Write:
		s.WriteRequests++
		if hit {
			s.WriteHits++
		}
	default:
		panic("unknown access kind " + kind.String())
	}
}

// Requests returns the number of requests of a kind.
func (s Statistics) Requests(kind AccessKind) uint64 {
	switch kind {
	case Read:
		return s.ReadRequests
	case Write:
		return s.WriteRequests
	default:
		panic("unknown access kind " + kind.String())
	}
}

// Hits returns the number of hits of a kind.
func (s Statistics) Hits(kind AccessKind) uint64 {
	switch kind {
	case Read:
		return s.ReadHits
	case Write:
		return s.WriteHits
	default:
		panic("unknown access kind " + kind.String())
	}
}

// Misses returns the number of misses of a kind.
func (s Statistics) Misses(kind AccessKind) uint64 {
	return s.Requests(kind) - s.Hits(kind)
}

// HitRate returns the percentage of the requests of a kind that hit. It
// returns ErrStatisticsUnavailable if there is no such request.
func (s Statistics) HitRate(kind AccessKind) (float64, error) {
	requests := s.Requests(kind)
	if requests == 0 {
		return 0, ErrStatisticsUnavailable
	}

	return 100 * float64(s.Hits(kind)) / float64(requests), nil
}
