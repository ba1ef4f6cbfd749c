package provider

import (
	"context"
	"time"

	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/Ckrest/graph-lib/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const milliWattsPerWatt = 1000

// NVMLMetric names a reading taken through the NVML library.
type NVMLMetric string

const (
	NVMLTemperature   NVMLMetric = "temperature"    // Celsius
	NVMLPower         NVMLMetric = "power"          // Watts
	NVMLUtilization   NVMLMetric = "utilization"    // percent
	NVMLMemoryUsed    NVMLMetric = "memory_used"    // MiB
	NVMLMemoryPercent NVMLMetric = "memory_percent" // used/total * 100
	NVMLFanSpeed      NVMLMetric = "fan_speed"      // percent
)

// NVMLConfig configures an in-process NVML poller.
type NVMLConfig struct {
	// Metric to track. Default NVMLTemperature.
	Metric NVMLMetric
	// Index selects the device.
	Index int
	// PollInterval between readings. Default 1s.
	PollInterval time.Duration
	// HistorySize is the rolling buffer capacity. Default 60.
	HistorySize int
}

// NVML polls a device metric through the NVML library instead of shelling
// out to nvidia-smi. Library or device initialization failures surface at
// construction; per-cycle query failures are transient.
type NVML struct {
	*poller
	cfg    NVMLConfig
	device nvml.Device
}

// NewNVML initializes NVML, resolves the device handle and builds the
// provider. Callers must Close when done to release the library.
func NewNVML(cfg NVMLConfig) (*NVML, error) {
	errFactory := errors.New()

	switch cfg.Metric {
	case "":
		cfg.Metric = NVMLTemperature
	case NVMLTemperature, NVMLPower, NVMLUtilization, NVMLMemoryUsed, NVMLMemoryPercent, NVMLFanSpeed:
	default:
		return nil, errFactory.WithData(ErrInvalidMetric, struct {
			Metric string
		}{Metric: string(cfg.Metric)})
	}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, errFactory.WithMessage(errors.ErrInitFailed, nvml.ErrorString(ret))
	}

	device, ret := nvml.DeviceGetHandleByIndex(cfg.Index)
	if ret != nvml.SUCCESS {
		_ = nvml.Shutdown()
		return nil, errFactory.WithMessage(errors.ErrInitFailed, nvml.ErrorString(ret))
	}

	if name, ret := device.GetName(); ret == nvml.SUCCESS {
		logger.Debug().Str("device", name).Int("index", cfg.Index).Msg("NVML device resolved")
	}

	n := &NVML{cfg: cfg, device: device}
	n.poller = newPoller("nvml", cfg.PollInterval, defaultGPUTimeout, cfg.HistorySize, n.readOnce)

	return n, nil
}

// Close stops polling and shuts the NVML library down.
func (n *NVML) Close() error {
	n.Stop()

	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errors.New().WithMessage(errors.ErrShutdownFailed, nvml.ErrorString(ret))
	}

	return nil
}

// readOnce reads the configured metric. NVML calls are local and fast;
// the cycle deadline is not consulted.
func (n *NVML) readOnce(_ context.Context) (float64, error) {
	switch n.cfg.Metric {
	case NVMLPower:
		mw, ret := n.device.GetPowerUsage()
		if ret != nvml.SUCCESS {
			return 0, nvmlError(ret)
		}
		return float64(mw) / milliWattsPerWatt, nil
	case NVMLUtilization:
		util, ret := n.device.GetUtilizationRates()
		if ret != nvml.SUCCESS {
			return 0, nvmlError(ret)
		}
		return float64(util.Gpu), nil
	case NVMLMemoryUsed:
		mem, ret := n.device.GetMemoryInfo()
		if ret != nvml.SUCCESS {
			return 0, nvmlError(ret)
		}
		return float64(mem.Used) / (1 << 20), nil
	case NVMLMemoryPercent:
		mem, ret := n.device.GetMemoryInfo()
		if ret != nvml.SUCCESS {
			return 0, nvmlError(ret)
		}
		if mem.Total == 0 {
			return 0, errors.New().WithMessage(ErrDeviceFailed, "device reports zero total memory")
		}
		return float64(mem.Used) / float64(mem.Total) * 100, nil
	case NVMLFanSpeed:
		speed, ret := n.device.GetFanSpeed()
		if ret != nvml.SUCCESS {
			return 0, nvmlError(ret)
		}
		return float64(speed), nil
	default:
		temp, ret := n.device.GetTemperature(nvml.TEMPERATURE_GPU)
		if ret != nvml.SUCCESS {
			return 0, nvmlError(ret)
		}
		return float64(temp), nil
	}
}

func nvmlError(ret nvml.Return) error {
	return errors.New().WithMessage(ErrDeviceFailed, nvml.ErrorString(ret))
}
