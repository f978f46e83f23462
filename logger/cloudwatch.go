package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// PutMetricData accepts at most this many datums per call; per-source
// metrics push a report past that once enough sources are configured.
const maxDatumsPerRequest = 20

var cwClient *cloudwatch.Client
var cwNamespace = "Leaderflow"
var cwDashboard = "Leaderflow"

// InitCloudWatch initialises the CloudWatch client for the given region and
// namespace. Region falls back to AWS_REGION. When the client cannot be
// created a warning is logged and metric publishing stays disabled; the
// pipeline itself is unaffected.
func InitCloudWatch(region, namespace, dashboard string) {
	log := GetLogger().WithComponent("cloudwatch")

	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	ctx := context.Background()
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.WithError(err).Warn("failed to load AWS configuration; CloudWatch metrics disabled")
		return
	}

	cwClient = cloudwatch.NewFromConfig(cfg)

	if namespace != "" {
		cwNamespace = namespace
	}
	if dashboard != "" {
		cwDashboard = dashboard
	}

	log.WithFields(Fields{"region": region, "namespace": cwNamespace}).Info("initialized CloudWatch client")

	ensureDashboard(ctx)
}

// publishMetrics sends metric data to CloudWatch in request-sized chunks.
// No-op until InitCloudWatch has run.
func publishMetrics(ctx context.Context, data []cwtypes.MetricDatum) {
	log := GetLogger().WithComponent("cloudwatch")
	if cwClient == nil || len(data) == 0 {
		return
	}

	for start := 0; start < len(data); start += maxDatumsPerRequest {
		end := start + maxDatumsPerRequest
		if end > len(data) {
			end = len(data)
		}
		if _, err := cwClient.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(cwNamespace),
			MetricData: data[start:end],
		}); err != nil {
			log.WithError(err).Warn("failed to publish CloudWatch metrics")
			return
		}
	}

	names := make([]string, 0, len(data))
	for _, datum := range data {
		if datum.MetricName != nil {
			names = append(names, *datum.MetricName)
		}
	}
	log.WithField("metrics", strings.Join(names, ",")).Debug("published metrics to CloudWatch")
}

// ensureDashboard creates the default dashboard: host health on one row,
// ingestion counters on the next. Failures are logged and ignored.
func ensureDashboard(ctx context.Context) {
	if cwClient == nil {
		return
	}

	body := fmt.Sprintf(`{
"widgets": [{
"type": "metric",
"width": 24,
"height": 6,
"properties": {
"metrics": [
    ["%[1]s","CPUPercent"],
    ["%[1]s","MemoryMB"],
    ["%[1]s","DiskMB"]
],
"period": 60,
"stat": "Average",
"title": "Leaderflow Host"
}
},{
"type": "metric",
"width": 24,
"height": 6,
"properties": {
"metrics": [
    ["%[1]s","Fetches"],
    ["%[1]s","SnapshotWrites"],
    ["%[1]s","MirrorWrites"],
    ["%[1]s","ErrorsReader"],
    ["%[1]s","ErrorsWriter"]
],
"period": 60,
"stat": "Sum",
"title": "Leaderflow Ingestion"
}
}]
}`, cwNamespace)

	if _, err := cwClient.PutDashboard(ctx, &cloudwatch.PutDashboardInput{
		DashboardName: aws.String(cwDashboard),
		DashboardBody: aws.String(body),
	}); err != nil {
		GetLogger().WithComponent("cloudwatch").WithError(err).Warn("failed to create CloudWatch dashboard")
	}
}
