package service

import (
	"strconv"
	"time"

	"github.com/marketbots/nsemetricsapi/internal/config"
	"github.com/marketbots/nsemetricsapi/pkg/utils/zaplogger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService is the service for the cron jobs
type CronService struct {
	cfg               *config.Config
	c                 *cron.Cron
	instrumentService *InstrumentService
	ingestService     *IngestService
}

// NewCronService creates a new CronService
func NewCronService(cfg *config.Config, db *gorm.DB) *CronService {
	return &CronService{
		cfg:               cfg,
		c:                 cron.New(),
		instrumentService: NewInstrumentService(db),
		ingestService:     NewIngestService(db, cfg),
	}
}

// Start starts the cron service
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// ------------------------------------------------------------
	// Add your SCHEDULED jobs here
	// ------------------------------------------------------------
	cs.addScheduledJob("Scrip Master UPDATE Job", cs.scripMasterUpdateJob, "0 8 * * 1-5")      // Once at 08:00am, Mon-Fri
	cs.addScheduledJob("Volume Split INGEST Job", cs.volumeSplitIngestJob, "*/30 9-15 * * 1-5") // Every 30 min during market hours, Mon-Fri

	// ------------------------------------------------------------
	// Add your STARTUP jobs here
	// ------------------------------------------------------------
	cs.addStartupJob("Scrip Master UPDATE Job", cs.scripMasterUpdateJob, 2*time.Second)

	cs.c.Start()
}

// addStartupJob adds a startup job to the cron service
func (cs *CronService) addStartupJob(name string, job func(), delay time.Duration) {
	go func() {
		time.Sleep(delay)
		zaplogger.Info("STARTED STARTUP job", zaplogger.Fields{
			"job": name,
		})
		job()
		zaplogger.Info("COMPLETED STARTUP job", zaplogger.Fields{
			"job": name,
		})
	}()
	zaplogger.Info("QUEUED STARTUP job", zaplogger.Fields{
		"job": name,
	})
}

func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Info("STARTED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
		job()
		zaplogger.Info("COMPLETED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
	})
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED JOB", zaplogger.Fields{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{
		"job": name,
	})
}

// scripMasterUpdateJob refreshes the instruments from the scrip master
func (cs *CronService) scripMasterUpdateJob() {
	jobName := "Scrip Master UPDATE Job "

	recordCount, err := cs.instrumentService.UpdateInstruments()
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{
		"records": strconv.FormatInt(recordCount, 10),
	})
}

// volumeSplitIngestJob runs one ingestion pass over all token batches
func (cs *CronService) volumeSplitIngestJob() {
	jobName := "Volume Split INGEST Job "

	result, err := cs.ingestService.RunIngestion()
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{
		"batches":        result.Batches,
		"failed_batches": result.FailedBatches,
		"saved":          result.Saved,
		"failed":         result.Failed,
	})
}
