package initializers

import (
	"grc-backend/config"
	"grc-backend/lib/smtp"

	log "github.com/sirupsen/logrus"
)

func InitSmtp() {
	smtpConf := config.Conf.Smtp
	err := smtp.Connect(smtpConf.User, smtpConf.Password, smtpConf.Host, smtpConf.Port, *smtpConf.TLSEnabled)
	if err != nil {
		panic(err.Error())
	}
	if !smtp.Instance.IsConfigured() {
		log.Warn("smtp is not configured, approval emails are disabled")
		return
	}
	log.
		WithField("host", smtpConf.Host).
		WithField("from", smtpConf.From).
		Info("smtp sender configured")
}
