package handlers

import (
	"log/slog"
	"time"

	"github.com/GregMSThompson/wallet-api/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Location        *time.Location
	UserSvc         userService
	TransactionSvc  transactionService
	CardSvc         cardService
	CatalogSvc      catalogService
	WidgetSvc       widgetService
	UploadSvc       uploadService
}
