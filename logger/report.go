package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net" //cloudwatch

	"github.com/aws/aws-sdk-go-v2/aws"                              //cloudwatch
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types" //cloudwatch
)

type sourceStat struct {
	fetches int64
	bytes   int64
}

var (
	errorsReader    int64
	errorsWriter    int64
	warnsReader     int64
	warnsWriter     int64
	fetchCount      int64
	snapshotWrites  int64
	mirrorWrites    int64
	mirrorWriteSize int64
	sources         sync.Map // map[string]*sourceStat
)

func recordWarn(component string) {
	if strings.Contains(component, "reader") {
		atomic.AddInt64(&warnsReader, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&warnsWriter, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "reader") {
		atomic.AddInt64(&errorsReader, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&errorsWriter, 1)
	}
}

func IncrementFetch(source string, size int) {
	atomic.AddInt64(&fetchCount, 1)
	recordSource(source, size)
}

func IncrementSnapshotWrite(size int64) {
	atomic.AddInt64(&snapshotWrites, 1)
}

func IncrementMirrorWrite(size int64) {
	atomic.AddInt64(&mirrorWrites, 1)
	atomic.AddInt64(&mirrorWriteSize, size)
}

func recordSource(name string, size int) {
	v, _ := sources.LoadOrStore(name, &sourceStat{})
	ss := v.(*sourceStat)
	atomic.AddInt64(&ss.fetches, 1)
	atomic.AddInt64(&ss.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and per-source statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)
	sourceData := map[string]map[string]int64{}
	sources.Range(func(k, v any) bool {
		name := k.(string)
		ss := v.(*sourceStat)
		sourceData[name] = map[string]int64{
			"fetches": atomic.LoadInt64(&ss.fetches),
			"bytes":   atomic.LoadInt64(&ss.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_reader":   atomic.LoadInt64(&errorsReader),
		"errors_writer":   atomic.LoadInt64(&errorsWriter),
		"warns_reader":    atomic.LoadInt64(&warnsReader),
		"warns_writer":    atomic.LoadInt64(&warnsWriter),
		"fetches":         atomic.LoadInt64(&fetchCount),
		"snapshot_writes": atomic.LoadInt64(&snapshotWrites),
		"mirror_writes":   atomic.LoadInt64(&mirrorWrites),
		"mirror_bytes":    atomic.LoadInt64(&mirrorWriteSize),
		"goroutines":      runtime.NumGoroutine(),
		"cpu_percent":     cpuPct,
		"memory_mb":       int64(memStats.Used) / 1024 / 1024,
		"disk_mb":         int64(diskStats.Used) / 1024 / 1024,
		"sources":         sourceData,
		"net_bytes_sent":  int64(bytesSent),
		"net_bytes_recv":  int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsReader"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_reader"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsWriter"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_writer"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("WarnsReader"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_reader"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("WarnsWriter"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_writer"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Fetches"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["fetches"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("SnapshotWrites"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["snapshot_writes"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("MirrorWrites"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["mirror_writes"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range sourceData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("SourceFetches"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Source"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["fetches"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("SourceBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Source"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
