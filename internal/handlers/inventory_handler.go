package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ordersaga/inventory-service/internal/aws"
	"github.com/ordersaga/inventory-service/internal/inventory"
	"github.com/ordersaga/inventory-service/internal/ledger"
	"github.com/ordersaga/inventory-service/internal/validation"
)

// HandlerConfig groups dependencies for the admin handlers.
type HandlerConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	InventoryTable string
	LedgerTable    string
}

// RegisterInventoryRoutes registers the admin routes: stock upsert/read and
// reservation ledger inspection.
func RegisterInventoryRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	invStore := inventory.NewStore(cfg.DynamoDBClient, cfg.InventoryTable)
	ledgerStore := ledger.NewStore(cfg.DynamoDBClient, cfg.LedgerTable, cfg.InventoryTable)

	r.PUT("/inventory", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.UpsertInventoryRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		rec := inventory.Record{
			ProductCode: req.ProductCode,
			Available:   req.Available,
		}
		if err := invStore.Put(ctx, rec); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "put_failed", "detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"product_code": rec.ProductCode, "available": rec.Available})
	})

	r.GET("/inventory/:productCode", func(c *gin.Context) {
		ctx := c.Request.Context()

		rec, err := invStore.Get(ctx, c.Param("productCode"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed", "detail": err.Error()})
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}

		c.JSON(http.StatusOK, rec)
	})

	r.GET("/reservations/:orderID/:transactionID", func(c *gin.Context) {
		ctx := c.Request.Context()

		entries, err := ledgerStore.FindAll(ctx, c.Param("orderID"), c.Param("transactionID"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger_query_failed", "detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	})
}
