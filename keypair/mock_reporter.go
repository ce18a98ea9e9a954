package keypair

// MockReporter is an AttestationReporter for tests: it records the last
// report data it was asked to quote and returns a fixed, non-cryptographic
// payload instead of talking to real SGX/DCAP infrastructure.
type MockReporter struct {
	LastReportData [64]byte
	QuoteBytes     []byte
}

// Quote records reportData and returns QuoteBytes (or a default marker if
// unset).
func (m *MockReporter) Quote(reportData [64]byte) ([]byte, error) {
	m.LastReportData = reportData
	if m.QuoteBytes != nil {
		return m.QuoteBytes, nil
	}
	return []byte("mock-quote"), nil
}
