package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.authenticate)
	adminMiddleware := authMiddleware.Append(app.requireRole(models.RoleAdmin))

	mux := pat.New()

	// Auth
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.RefreshToken))

	// Invoice actions
	mux.Post("/invoice/:id/send", adminMiddleware.ThenFunc(app.invoiceHandler.SendInvoice))
	mux.Post("/invoice/:id/void", adminMiddleware.ThenFunc(app.invoiceHandler.VoidInvoice))
	mux.Post("/invoice/:id/void_with_email", adminMiddleware.ThenFunc(app.invoiceHandler.VoidInvoiceWithEmail))
	mux.Post("/invoice/:id/mark_paid", adminMiddleware.ThenFunc(app.invoiceHandler.MarkInvoicePaid))
	mux.Post("/invoice/:id/discount", adminMiddleware.ThenFunc(app.invoiceHandler.ApplyDiscount))
	mux.Get("/invoice/:id/pdf", adminMiddleware.ThenFunc(app.invoiceHandler.InvoicePDF))

	// Work orders
	mux.Post("/work_order/:id/accept", adminMiddleware.ThenFunc(app.workOrderHandler.AcceptWorkOrder))

	// Accounting sync
	mux.Post("/sync/invoice/:freshbooks_id", adminMiddleware.ThenFunc(app.syncHandler.SyncOne))
	mux.Post("/sync/:resource", adminMiddleware.ThenFunc(app.syncHandler.SyncResource))

	// Work sessions
	mux.Post("/work_session/check_in", authMiddleware.ThenFunc(app.workSessionHandler.HandleCheckIn))
	mux.Post("/work_session/check_out", authMiddleware.ThenFunc(app.workSessionHandler.HandleCheckOut))
	mux.Get("/work_session/timesheet", authMiddleware.ThenFunc(app.workSessionHandler.Timesheet))

	// Evidence photos
	mux.Post("/evidence", authMiddleware.ThenFunc(app.evidenceHandler.UploadEvidence))

	// Push tokens
	mux.Post("/notify_token", authMiddleware.ThenFunc(app.deviceTokenHandler.RegisterToken))
	mux.Del("/notify_token/:token", authMiddleware.ThenFunc(app.deviceTokenHandler.UnregisterToken))

	// Live admin feed
	mux.Get("/ws/admin", standardMiddleware.ThenFunc(app.handleAdminWS))

	return mux
}
