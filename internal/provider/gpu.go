package provider

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Ckrest/graph-lib/internal/errors"
)

// GPUMetric names one of the readings exposed by nvidia-smi.
type GPUMetric string

const (
	MetricMemoryUsed    GPUMetric = "memory_used"    // MiB
	MetricMemoryPercent GPUMetric = "memory_percent" // used/total * 100
	MetricUtilization   GPUMetric = "utilization"    // percent
	MetricTemperature   GPUMetric = "temperature"    // Celsius
	MetricPower         GPUMetric = "power"          // Watts
)

const (
	defaultGPUTimeout = 2 * time.Second
	gpuQueryFields    = "memory.used,memory.total,utilization.gpu,temperature.gpu,power.draw"
)

// GPUConfig configures an nvidia-smi poller.
type GPUConfig struct {
	// Metric to track. Default MetricMemoryUsed.
	Metric GPUMetric
	// Index selects the device on multi-GPU systems.
	Index int
	// PollInterval between queries. Default 1s.
	PollInterval time.Duration
	// HistorySize is the rolling buffer capacity. Default 60.
	HistorySize int
}

// gpuReading is one parsed nvidia-smi row.
type gpuReading struct {
	memoryUsed  float64
	memoryTotal float64
	utilization float64
	temperature float64
	power       float64
}

// GPU polls nvidia-smi for a single device metric. It shells out rather
// than linking NVML, so it works against any driver installation that
// ships the CLI; see NVML for the in-process variant.
type GPU struct {
	*poller
	cfg GPUConfig
}

// GPUInfo is the static device description returned by DeviceInfo.
type GPUInfo struct {
	Name        string
	MemoryTotal string
	Driver      string
}

// NewGPU validates the metric selection and builds the provider.
func NewGPU(cfg GPUConfig) (*GPU, error) {
	switch cfg.Metric {
	case "":
		cfg.Metric = MetricMemoryUsed
	case MetricMemoryUsed, MetricMemoryPercent, MetricUtilization, MetricTemperature, MetricPower:
	default:
		return nil, errors.New().WithData(ErrInvalidMetric, struct {
			Metric string
		}{Metric: string(cfg.Metric)})
	}

	g := &GPU{cfg: cfg}
	g.poller = newPoller("gpu", cfg.PollInterval, defaultGPUTimeout, cfg.HistorySize, g.readOnce)

	return g, nil
}

func (g *GPU) readOnce(ctx context.Context) (float64, error) {
	reading, err := g.query(ctx)
	if err != nil {
		return 0, err
	}

	switch g.cfg.Metric {
	case MetricMemoryPercent:
		if reading.memoryTotal <= 0 {
			return 0, errors.New().WithMessage(ErrParseFailed, "device reports zero total memory")
		}
		return reading.memoryUsed / reading.memoryTotal * 100, nil
	case MetricUtilization:
		return reading.utilization, nil
	case MetricTemperature:
		return reading.temperature, nil
	case MetricPower:
		return reading.power, nil
	default:
		return reading.memoryUsed, nil
	}
}

func (g *GPU) query(ctx context.Context) (gpuReading, error) {
	errFactory := errors.New()

	cmd := exec.CommandContext(ctx, "nvidia-smi",
		fmt.Sprintf("--id=%d", g.cfg.Index),
		"--query-gpu="+gpuQueryFields,
		"--format=csv,noheader,nounits")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return gpuReading{}, errFactory.New(ErrExecTimeout)
		}

		return gpuReading{}, errFactory.Wrap(ErrExecFailed, err)
	}

	parts := strings.Split(strings.TrimSpace(stdout.String()), ", ")
	if len(parts) < 5 {
		return gpuReading{}, errFactory.WithData(ErrParseFailed, struct {
			Output string
		}{Output: stdout.String()})
	}

	var (
		reading gpuReading
		err     error
	)
	if reading.memoryUsed, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return gpuReading{}, errFactory.Wrap(ErrParseFailed, err)
	}
	if reading.memoryTotal, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return gpuReading{}, errFactory.Wrap(ErrParseFailed, err)
	}
	if reading.utilization, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return gpuReading{}, errFactory.Wrap(ErrParseFailed, err)
	}
	if reading.temperature, err = strconv.ParseFloat(parts[3], 64); err != nil {
		return gpuReading{}, errFactory.Wrap(ErrParseFailed, err)
	}

	// Some devices report "[N/A]" for power draw.
	if reading.power, err = strconv.ParseFloat(parts[4], 64); err != nil {
		reading.power = 0
	}

	return reading, nil
}

// DeviceInfo queries static device information: name, total memory and
// driver version.
func DeviceInfo(ctx context.Context, index int) (GPUInfo, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, defaultGPUTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "nvidia-smi",
		fmt.Sprintf("--id=%d", index),
		"--query-gpu=name,memory.total,driver_version",
		"--format=csv,noheader")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return GPUInfo{}, errFactory.Wrap(ErrExecFailed, err)
	}

	parts := strings.Split(strings.TrimSpace(stdout.String()), ", ")
	if len(parts) < 3 {
		return GPUInfo{}, errFactory.WithData(ErrParseFailed, struct {
			Output string
		}{Output: stdout.String()})
	}

	return GPUInfo{
		Name:        parts[0],
		MemoryTotal: parts[1],
		Driver:      parts[2],
	}, nil
}
