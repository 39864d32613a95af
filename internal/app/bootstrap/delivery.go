package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/novavoice/nova-voice/internal/config"
	"github.com/novavoice/nova-voice/internal/events"
	"github.com/novavoice/nova-voice/internal/notify"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// BuildEmailSender picks the provider named by EMAIL_PROVIDER. Anything
// unconfigured falls back to the logging stub.
func BuildEmailSender(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected without SENDGRID_API_KEY; using stub email sender")
	case "ses":
		if ses != nil {
			return notify.NewSESSender(ses, notify.SESConfig{FromEmail: cfg.EmailFrom, FromName: cfg.EmailFromName}, logger)
		}
		logger.Warn("ses selected without an AWS client; using stub email sender")
	}
	return notify.NewStubEmailSender(logger)
}

// Route names stored with outbox entries. Renaming one makes in-flight
// entries deliver to that route again.
const (
	RouteLeadQueue  = "lead_queue"
	RouteSalesEmail = "sales_email"
)

// BuildDeliveryHandler fans each outbox entry out to the lead-events queue and
// the sales notifier. Either side is skipped when unconfigured; nil means
// there is nothing to deliver to.
func BuildDeliveryHandler(cfg *appconfig.Config, sqsClient *sqs.Client, email notify.EmailSender, logger *logging.Logger) events.DeliveryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	var fanout events.Fanout
	if sqsClient != nil && cfg.LeadEventsQueueURL != "" {
		fanout = append(fanout, events.Route{Name: RouteLeadQueue, Handler: events.NewSQSPublisher(sqsClient, cfg.LeadEventsQueueURL)})
	}
	if email != nil && cfg.SalesNotifyEmail != "" {
		fanout = append(fanout, events.Route{Name: RouteSalesEmail, Handler: notify.NewSalesNotifier(email, cfg.SalesNotifyEmail, cfg.HotLeadMinScore, logger)})
	}
	if len(fanout) == 0 {
		return nil
	}
	logger.Info("outbox delivery configured", "handlers", len(fanout))
	return fanout
}
