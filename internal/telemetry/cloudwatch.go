// Package telemetry emits service metrics to AWS CloudWatch. The collector
// plugs into the API chassis as its MetricsCollector; when metrics are
// disabled in configuration, the server simply runs without one.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the collector.
const (
	metricAPIRequestCount = "APIRequestCount"
	metricAPILatency      = "APILatency"
	metricQuotaDenied     = "QuotaDenied"
)

// Dimension names.
const (
	dimMethod   = "Method"
	dimEndpoint = "Endpoint"
	dimStatus   = "Status"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchCollector publishes API request metrics to a CloudWatch
// namespace. Publish failures are logged and swallowed; telemetry must never
// fail a request.
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchCollector creates a collector publishing to the given
// namespace.
func NewCloudWatchCollector(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchCollector{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordRequest emits a count and a latency metric for one completed API
// call, dimensioned by method, endpoint, and status.
func (c *CloudWatchCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		{Name: aws.String(dimMethod), Value: aws.String(method)},
		{Name: aws.String(dimEndpoint), Value: aws.String(endpoint)},
		{Name: aws.String(dimStatus), Value: aws.String(status)},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(metricAPIRequestCount),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
			},
			{
				MetricName: aws.String(metricAPILatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: dims,
			},
		},
	}

	// Metric publication is fire-and-forget relative to the request path.
	if _, err := c.client.PutMetricData(context.Background(), input); err != nil {
		c.logger.Error("failed to record request metrics",
			slog.String("error", err.Error()),
			slog.String("endpoint", endpoint),
		)
	}
}

// RecordQuotaDenied emits a counter for quota denials, a direct signal of
// free-tier users hitting the paywall.
func (c *CloudWatchCollector) RecordQuotaDenied(ctx context.Context, endpoint string) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(metricQuotaDenied),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(dimEndpoint), Value: aws.String(endpoint)},
				},
			},
		},
	}

	if _, err := c.client.PutMetricData(ctx, input); err != nil {
		c.logger.Error("failed to record quota denial metric",
			slog.String("error", err.Error()),
			slog.String("endpoint", endpoint),
		)
	}
}
