package main

import (
	"log"
	"time"

	"github.com/higpup01-design/proofok-simple/config"
	"github.com/higpup01-design/proofok-simple/notify"
	"github.com/higpup01-design/proofok-simple/routes"
	"github.com/higpup01-design/proofok-simple/store"
	"github.com/higpup01-design/proofok-simple/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer utils.Logger.Sync()

	st, err := store.New(cfg.DataDir, cfg.UploadDir)
	if err != nil {
		utils.Sugar.Fatalf("failed to init storage: %v", err)
	}

	var sender notify.Sender
	switch cfg.EmailProvider {
	case "smtp":
		sender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.SMTPTLS, cfg.FromEmail, cfg.FromName, cfg.ToEmail)
	default:
		sender = notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName, cfg.ToEmail)
	}

	notifier := notify.New(sender, notify.Options{
		Mode:        cfg.EmailMode,
		Workers:     cfg.NotifyWorkers,
		SendTimeout: time.Duration(cfg.SendTimeoutSec) * time.Second,
	}, utils.Sugar)
	defer notifier.Close()

	r := routes.SetupRouter(cfg, st, notifier)

	utils.Sugar.Infof("%s listening on :%s (email=%s/%s)", config.Version, cfg.AppPort, cfg.EmailProvider, cfg.EmailMode)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Errorf("server exited: %v", err)
	}
}
