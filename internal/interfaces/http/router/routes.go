package router

// APIGroups returns the versioned API route groups. Handlers left nil are
// not mounted.
func APIGroups(h Handlers) []*DomainGroup {
	groups := make([]*DomainGroup, 0, 5)

	if h.Products != nil {
		catalogRoutes := NewDomainGroup("catalog", "/catalog")
		catalogRoutes.POST("/products", h.Products.Create)
		catalogRoutes.GET("/products", h.Products.List)
		catalogRoutes.GET("/products/:id", h.Products.GetByID)
		catalogRoutes.PUT("/products/:id", h.Products.Update)
		groups = append(groups, catalogRoutes)
	}

	partnerRoutes := NewDomainGroup("partner", "/partner")
	if h.Customers != nil {
		partnerRoutes.POST("/customers", h.Customers.Create)
		partnerRoutes.GET("/customers", h.Customers.List)
		partnerRoutes.GET("/customers/:id", h.Customers.GetByID)
		partnerRoutes.PUT("/customers/:id", h.Customers.Update)
	}
	if h.Suppliers != nil {
		partnerRoutes.POST("/suppliers", h.Suppliers.Create)
		partnerRoutes.GET("/suppliers", h.Suppliers.List)
		partnerRoutes.GET("/suppliers/:id", h.Suppliers.GetByID)
		partnerRoutes.PUT("/suppliers/:id", h.Suppliers.Update)
	}
	groups = append(groups, partnerRoutes)

	if h.Ledger != nil {
		ledgerRoutes := NewDomainGroup("ledger", "/ledger")
		ledgerRoutes.POST("/sales", h.Ledger.RecordSale)
		ledgerRoutes.GET("/sales", h.Ledger.ListSales)
		ledgerRoutes.GET("/sales/:id", h.Ledger.GetSale)
		ledgerRoutes.POST("/purchases", h.Ledger.RecordPurchase)
		ledgerRoutes.GET("/purchases", h.Ledger.ListPurchases)
		ledgerRoutes.GET("/purchases/:id", h.Ledger.GetPurchase)
		groups = append(groups, ledgerRoutes)
	}

	if h.Finance != nil {
		financeRoutes := NewDomainGroup("finance", "/finance")
		financeRoutes.GET("/receivables", h.Finance.ListReceivables)
		financeRoutes.POST("/receivables/:id/settle", h.Finance.SettleReceivable)
		financeRoutes.GET("/payables", h.Finance.ListPayables)
		financeRoutes.POST("/payables/:id/settle", h.Finance.SettlePayable)
		financeRoutes.GET("/obligations/due", h.Finance.ListDue)
		groups = append(groups, financeRoutes)
	}

	if h.Reports != nil {
		reportRoutes := NewDomainGroup("report", "/reports")
		reportRoutes.GET("/dashboard", h.Reports.Dashboard)
		reportRoutes.GET("/stock", h.Reports.Stock)
		reportRoutes.GET("/monthly", h.Reports.Monthly)
		reportRoutes.GET("/obligations", h.Reports.Obligations)
		reportRoutes.GET("/top-products", h.Reports.TopProducts)
		reportRoutes.GET("/top-customers", h.Reports.TopCustomers)
		groups = append(groups, reportRoutes)
	}

	return groups
}
