package bootstrap

import (
	"context"
	"fmt"

	"coreader-client/internal/config"
	"coreader-client/internal/controller"
	"coreader-client/internal/handler"
	"coreader-client/internal/notify"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/repository/memory"
	"coreader-client/internal/service"
	"coreader-client/internal/transport"
	pktNats "coreader-client/pkg/nats"
)

const notifyStreamName = "COREADER_NOTIFICATIONS"

// Container is the client side object graph.
type Container struct {
	Logger   logger.ILogger
	Client   *transport.Client
	Bus      *notify.Bus
	Files    service.IFileRegistryService
	Session  service.ISessionService
	Notifier *notify.NatsForwarder

	cancelForward context.CancelFunc
	forwardDone   chan struct{}
}

func NewContainer(cfg *config.Config, log logger.ILogger, sessionOpts ...service.SessionOption) (*Container, error) {
	// 1. Transport
	client, err := transport.NewClient(transport.Options{
		ServerURL:   cfg.Client.ServerURL,
		Protocol:    cfg.Client.StreamProtocol,
		HTTPTimeout: cfg.Client.HTTPTimeout,
		DialTimeout: cfg.Client.DialTimeout,
		IdleTimeout: cfg.Client.StreamIdleTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	decoder, err := transport.NewFrameDecoder(cfg.Client.StreamProtocol)
	if err != nil {
		return nil, err
	}

	// 2. Notification Bus
	bus := notify.NewBus(log)

	// 3. Services
	files := service.NewFileRegistryService(client, bus, log)
	session := service.NewSessionService(client, files, decoder, bus, log, sessionOpts...)

	c := &Container{
		Logger:  log,
		Client:  client,
		Bus:     bus,
		Files:   files,
		Session: session,
	}

	// 4. Optional NATS forwarding
	if cfg.Notify.NatsURL != "" {
		if err := c.startForwarding(cfg); err != nil {
			// Forwarding is optional; the client works without it.
			log.Warn("Bootstrap", "NATS forwarding disabled", map[string]interface{}{"error": err})
		}
	}

	return c, nil
}

func (c *Container) startForwarding(cfg *config.Config) error {
	pub, err := pktNats.NewPublisher(cfg.Notify.NatsURL, notifyStreamName, cfg.Notify.SubjectPrefix)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := c.Bus.Subscribe(ctx)
	if err != nil {
		cancel()
		pub.Close()
		return fmt.Errorf("subscribe to bus: %w", err)
	}

	c.Notifier = notify.NewNatsForwarder(pub, cfg.Notify.SubjectPrefix, c.Logger)
	c.cancelForward = cancel
	c.forwardDone = make(chan struct{})
	go func() {
		defer close(c.forwardDone)
		c.Notifier.Run(ctx, ch)
	}()

	c.Logger.Info("Bootstrap", "Forwarding notifications to NATS", map[string]interface{}{"prefix": cfg.Notify.SubjectPrefix})
	return nil
}

// Close stops the in-flight stream, the forwarder and the bus, in that order.
func (c *Container) Close() error {
	c.Session.Close()

	if c.cancelForward != nil {
		c.cancelForward()
		<-c.forwardDone
		c.Notifier.Close()
	}

	return c.Bus.Close()
}

// DevServerContainer is the dev backend object graph.
type DevServerContainer struct {
	DocumentController controller.IDocumentController
	StreamHandler      *handler.StreamHandler
}

func NewDevServerContainer(cfg *config.Config, log logger.ILogger) *DevServerContainer {
	documentRepo := memory.NewDocumentRepository()
	conversationRepo := memory.NewConversationRepository()

	documentService := service.NewDocumentService(documentRepo, conversationRepo, log)

	return &DevServerContainer{
		DocumentController: controller.NewDocumentController(documentService),
		StreamHandler:      handler.NewStreamHandler(documentService, cfg.DevServer.TokenDelay, log),
	}
}
