package ports

// UploadMetrics receives pipeline observations.
type UploadMetrics interface {
	ObserveUpload(outcome string)
	ObserveProcessing(seconds float64)
}
