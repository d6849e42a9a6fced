// Package observability publishes custom application metrics to CloudWatch.
package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the backend
const (
	MetricItemsRolled           = "ItemsRolled"
	MetricCatalogGenerated      = "CollectablesGenerated"
	MetricTradesCreated         = "TradesCreated"
	MetricTradesCompleted       = "TradesCompleted"
	MetricTradesRejected        = "TradesRejected"
	MetricTradesCancelled       = "TradesCancelled"
	MetricConflictCancellations = "ConflictTradeCancellations"
)

// Metrics publishes counters to a CloudWatch namespace. Failures are
// swallowed by callers; metrics must never fail a request.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
}

// NewMetrics creates a metrics publisher
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{client: client, namespace: namespace}
}

// Count publishes a count metric with no dimensions
func (m *Metrics) Count(ctx context.Context, name string, value float64) error {
	return m.CountWithDimensions(ctx, name, value, nil)
}

// CountByRarity publishes a count metric dimensioned by rarity tier id
func (m *Metrics) CountByRarity(ctx context.Context, name string, value float64, rarityID int) error {
	return m.CountWithDimensions(ctx, name, value, map[string]string{
		"RarityTier": strconv.Itoa(rarityID),
	})
}

// CountWithDimensions publishes a count metric with the given dimensions
func (m *Metrics) CountWithDimensions(ctx context.Context, name string, value float64, dims map[string]string) error {
	if m.client == nil {
		return nil
	}

	datum := types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	}
	for k, v := range dims {
		datum.Dimensions = append(datum.Dimensions, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	})
	return err
}
