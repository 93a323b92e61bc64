package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	firebase "firebase.google.com/go"
	"github.com/aws/aws-sdk-go/aws"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"github.com/silasdani/bullet-services-sub001/internal/config"
	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/geo"
	"github.com/silasdani/bullet-services-sub001/internal/handlers"
	"github.com/silasdani/bullet-services-sub001/internal/jobs"
	"github.com/silasdani/bullet-services-sub001/internal/repositories"
	"github.com/silasdani/bullet-services-sub001/internal/services"
	"github.com/silasdani/bullet-services-sub001/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	logger   *slog.Logger
	db       *sql.DB

	tokenManager *utils.TokenManager
	wsManager    *WebSocketManager
	events       *services.EventDispatcher
	runner       *jobs.Runner

	buildingRepo *repositories.BuildingRepository
	syncService  *services.FreshbooksSyncService
	geocoder     *geo.CachedGeocoder

	invoiceHandler     *handlers.InvoiceHandler
	workOrderHandler   *handlers.WorkOrderHandler
	workSessionHandler *handlers.WorkSessionHandler
	syncHandler        *handlers.SyncHandler
	evidenceHandler    *handlers.EvidenceHandler
	deviceTokenHandler *handlers.DeviceTokenHandler
	userHandler        *handlers.UserHandler
}

func initializeApp(db *sql.DB, rdb *redis.Client, cfg config.Config, errorLog, infoLog *log.Logger, logger *slog.Logger) (*application, error) {
	invoiceRepo := &repositories.InvoiceRepository{DB: db}
	mirrorRepo := &repositories.FreshbooksInvoiceRepository{DB: db}
	clientRepo := &repositories.FreshbooksClientRepository{DB: db}
	paymentRepo := &repositories.FreshbooksPaymentRepository{DB: db}
	workOrderRepo := &repositories.WorkOrderRepository{DB: db}
	sessionRepo := &repositories.WorkSessionRepository{DB: db}
	buildingRepo := &repositories.BuildingRepository{DB: db}
	evidenceRepo := &repositories.EvidenceRepository{DB: db}
	userRepo := &repositories.UserRepository{DB: db}
	tokenRepo := &repositories.DeviceTokenRepository{DB: db}

	gateway, err := freshbooks.NewClient(freshbooks.Config{
		BaseURL:   cfg.Freshbooks.BaseURL,
		Token:     cfg.Freshbooks.Token,
		AccountID: cfg.Freshbooks.AccountID,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("freshbooks client: %w", err)
	}

	geocoder := geo.NewCachedGeocoder(geo.NewGeocoder(nil, cfg.Google.MapsAPIKey, ""), rdb)

	awsSess, err := awssession.NewSession(&aws.Config{Region: aws.String(cfg.AWS.Region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	mailer := services.NewMailerService(ses.New(awsSess), cfg.AWS.SESSender, logger)
	storage := utils.NewStorage(s3.New(awsSess), cfg.AWS.Bucket, cfg.AWS.BucketBaseURL)

	pushService := &services.PushService{Tokens: tokenRepo, Logger: logger}
	if cfg.Google.FCMCredentials != "" {
		fbApp, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsFile(cfg.Google.FCMCredentials))
		if err != nil {
			errorLog.Printf("firebase init failed, push disabled: %v", err)
		} else if msgClient, err := fbApp.Messaging(context.Background()); err != nil {
			errorLog.Printf("firebase messaging init failed, push disabled: %v", err)
		} else {
			pushService.Client = msgClient
		}
	}

	wsManager := NewWebSocketManager(logger)
	notifier := &services.AdminNotifyService{
		Tokens: tokenRepo,
		Push:   pushService,
		Feed:   wsManager,
		Logger: logger,
	}

	events := services.NewEventDispatcher(logger)
	runner := jobs.NewRunner(logger)

	syncService := &services.FreshbooksSyncService{
		Gateway:  gateway,
		Invoices: invoiceRepo,
		Mirrors:  mirrorRepo,
		Clients:  clientRepo,
		Payments: paymentRepo,
		Logger:   logger,
	}

	// Every committed status change re-syncs its mirror and pings admins.
	events.Subscribe(func(ctx context.Context, ev services.InvoiceEvent) {
		runner.Enqueue(jobs.Job{
			Name: fmt.Sprintf("sync-invoice-%d", ev.FreshbooksID),
			Run: func(ctx context.Context) error {
				return syncService.SyncOne(ctx, ev.FreshbooksID)
			},
		})
		notifier.NotifyAdmins(ctx,
			"Invoice "+ev.Action,
			fmt.Sprintf("Invoice %d moved from %q to %q", ev.InvoiceID, ev.FromStatus, ev.ToStatus),
			map[string]string{
				"event":      "invoice_" + ev.Action,
				"invoice_id": fmt.Sprint(ev.InvoiceID),
				"to_status":  ev.ToStatus,
			})
	})

	sendService := &services.InvoiceSendService{
		Invoices: invoiceRepo, Mirrors: mirrorRepo, WorkOrders: workOrderRepo,
		Gateway: gateway, Mailer: mailer, Events: events, Logger: logger,
	}
	voidService := &services.InvoiceVoidService{
		Invoices: invoiceRepo, Mirrors: mirrorRepo,
		Gateway: gateway, Events: events, Logger: logger,
	}
	voidWithEmailService := &services.InvoiceVoidWithEmailService{
		Void: voidService, WorkOrders: workOrderRepo, Mailer: mailer, Logger: logger,
	}
	markPaidService := &services.InvoiceMarkPaidService{
		Invoices: invoiceRepo, Mirrors: mirrorRepo,
		Gateway: gateway, Events: events, Logger: logger,
	}
	discountService := &services.InvoiceApplyDiscountService{
		Invoices: invoiceRepo, Mirrors: mirrorRepo,
		Gateway: gateway, Events: events, Logger: logger,
	}

	checkInService := &services.CheckInService{
		Sessions: sessionRepo, Orders: workOrderRepo, Buildings: buildingRepo,
		Users: userRepo, Geocoder: geocoder, Notifier: notifier, Logger: logger,
	}
	checkOutService := &services.CheckOutService{
		Sessions: sessionRepo, Evidence: evidenceRepo,
		Geocoder: geocoder, Notifier: notifier, Logger: logger,
	}
	evidenceService := &services.EvidenceService{
		Storage: storage, Evidence: evidenceRepo, Orders: workOrderRepo, Logger: logger,
	}
	workOrderService := &services.WorkOrderService{Orders: workOrderRepo, Logger: logger}

	tokenManager := utils.NewTokenManager(cfg.JWT.Secret)
	authService := &services.AuthService{Users: userRepo, Tokens: tokenManager, Logger: logger}

	app := &application{
		errorLog:     errorLog,
		infoLog:      infoLog,
		logger:       logger,
		db:           db,
		tokenManager: tokenManager,
		wsManager:    wsManager,
		events:       events,
		runner:       runner,
		buildingRepo: buildingRepo,
		syncService:  syncService,
		geocoder:     geocoder,

		invoiceHandler: &handlers.InvoiceHandler{
			Send: sendService, Void: voidService, VoidWithEmail: voidWithEmailService,
			MarkPaid: markPaidService, Discount: discountService,
			Mirrors: mirrorRepo, Gateway: gateway, Logger: logger,
		},
		workOrderHandler:   &handlers.WorkOrderHandler{Service: workOrderService, Logger: logger},
		workSessionHandler: &handlers.WorkSessionHandler{CheckIn: checkInService, CheckOut: checkOutService, Logger: logger},
		syncHandler:        &handlers.SyncHandler{Sync: syncService, Logger: logger},
		evidenceHandler:    &handlers.EvidenceHandler{Service: evidenceService, Logger: logger},
		deviceTokenHandler: &handlers.DeviceTokenHandler{Push: pushService, Logger: logger},
		userHandler:        &handlers.UserHandler{Auth: authService, Logger: logger},
	}
	return app, nil
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	app.errorLog.Output(2, err.Error())
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
