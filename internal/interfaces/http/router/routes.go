package router

import (
	"github.com/erp/soreconcile/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// HookGroup exposes the hooks the host ledger calls
func HookGroup(h *handler.ReconciliationHandler) *DomainGroup {
	return NewDomainGroup("hooks", "/hooks").
		POST("/payment-posted", h.PaymentPosted).
		POST("/statement-line-reconciled", h.StatementLineReconciled).
		POST("/move-line-defaults", h.MoveLineDefaults)
}

// OperatorGroup exposes the synchronous re-run and preview endpoints.
// rerunMiddleware (rate limiting) applies to the re-run routes only.
func OperatorGroup(h *handler.ReconciliationHandler, rerunMiddleware ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("operator", "")

	rerun := g.Group("reconciliation", "/reconciliation").Use(rerunMiddleware...)
	rerun.POST("/payments/:id", h.RerunPayment).
		POST("/statement-lines/:id", h.RerunStatementLine)

	g.Group("references", "/references").
		GET("/extract", h.ExtractReference)
	return g
}

// SystemGroup exposes build information
func SystemGroup(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo)
}

// RegisterHealth mounts the unversioned probe endpoint
func RegisterHealth(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
}
