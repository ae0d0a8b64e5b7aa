package storage

import "liquidityBook/internal/model"

// DistributionSink receives distribution plan records.
type DistributionSink interface {
	PutDistribution(records []model.DistributionRecord) error
}
