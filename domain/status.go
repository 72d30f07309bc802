package domain

// GuardStatus is a point-in-time snapshot of the protection layer,
// exposed on the internal ops API.
type GuardStatus struct {
	RateLimitStore    string `json:"rateLimitStore"`
	CacheStore        string `json:"cacheStore"`
	AdmissionCapacity int    `json:"admissionCapacity"`
	AdmissionActive   int    `json:"admissionActive"`
	AdmissionQueued   int    `json:"admissionQueued"`
}
