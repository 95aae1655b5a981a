package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/internal/bootstrap"
	"github.com/certibase/backend/internal/infrastructure/database"
	"github.com/certibase/backend/internal/interfaces/middleware"
	"github.com/certibase/backend/internal/interfaces/rest"
)

func main() {
	// .env is optional; real deployments inject the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("📦 Loaded .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	svcMgr := services.NewServiceManager(db)
	log.Println("🔧 Service manager initialized")

	if err := bootstrap.InitializeSystemData(svcMgr); err != nil {
		log.Fatalf("Failed to initialize system data: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.Cors())
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerRoutes(router, svcMgr)

	svcMgr.StartScheduler()
	log.Println("⏰ Scheduler started (60s polling)")

	log.Printf("🚀 CertiBase backend listening on http://localhost:%s", port)
	log.Printf("💚 Health check:   http://localhost:%s/health", port)
	log.Printf("📈 Metrics:        http://localhost:%s/metrics", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.StopScheduler()
	log.Println("🛑 Scheduler stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}

func registerRoutes(router *gin.Engine, svcMgr *services.ServiceManager) {
	authHandler := rest.NewAuthHandler(svcMgr)
	clientHandler := rest.NewClientHandler(svcMgr)
	standardHandler := rest.NewStandardHandler(svcMgr)
	auditHandler := rest.NewAuditHandler(svcMgr)
	checklistHandler := rest.NewChecklistHandler(svcMgr)
	certHandler := rest.NewCertificationHandler(svcMgr)
	bizdevHandler := rest.NewBizDevHandler(svcMgr)
	contractHandler := rest.NewContractHandler(svcMgr)
	hrHandler := rest.NewHRHandler(svcMgr)
	taskHandler := rest.NewTaskHandler(svcMgr)
	documentHandler := rest.NewDocumentHandler(svcMgr)
	pipelineHandler := rest.NewPipelineHandler(svcMgr)
	dashboardHandler := rest.NewDashboardHandler(svcMgr)
	adminHandler := rest.NewAdminHandler(svcMgr)

	requireAuth := middleware.RequireAuth(svcMgr.Auth)
	requireAdmin := middleware.RequireAdmin()
	requireManager := middleware.RequireManager()

	api := router.Group("/api")
	{
		// Auth and user management
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetMe)
			auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
			auth.GET("/users", requireAuth, requireAdmin, authHandler.ListUsers)
			auth.POST("/users", requireAuth, requireAdmin, authHandler.CreateUser)
			auth.PUT("/users/:id", requireAuth, requireAdmin, authHandler.UpdateUser)
		}

		// Clients and contacts
		clients := api.Group("/clients")
		clients.Use(requireAuth)
		{
			clients.POST("", clientHandler.Create)
			clients.GET("", clientHandler.List)
			clients.GET("/stats", clientHandler.Stats)
			clients.GET("/:id", clientHandler.Get)
			clients.PUT("/:id", clientHandler.Update)
			clients.DELETE("/:id", requireManager, clientHandler.Delete)
			clients.POST("/:id/contacts", clientHandler.AddContact)
			clients.GET("/:id/contacts", clientHandler.ListContacts)
			clients.PUT("/:id/contacts/:contactId", clientHandler.UpdateContact)
			clients.DELETE("/:id/contacts/:contactId", clientHandler.DeleteContact)
		}

		// ISO standards
		standards := api.Group("/standards")
		standards.Use(requireAuth)
		{
			standards.POST("", requireAdmin, standardHandler.Create)
			standards.GET("", standardHandler.List)
			standards.GET("/:id", standardHandler.Get)
			standards.PUT("/:id", requireAdmin, standardHandler.Update)
		}

		// Audits, findings and checklist responses
		audits := api.Group("/audits")
		audits.Use(requireAuth)
		{
			audits.POST("", auditHandler.Create)
			audits.GET("", auditHandler.List)
			audits.GET("/stats", auditHandler.Stats)
			audits.GET("/calendar", auditHandler.Calendar)
			audits.GET("/:id", auditHandler.Get)
			audits.PUT("/:id", auditHandler.Update)
			audits.DELETE("/:id", requireManager, auditHandler.Delete)
			audits.POST("/:id/findings", auditHandler.AddFinding)
			audits.GET("/:id/findings", auditHandler.ListFindings)
			audits.PUT("/:id/findings/:findingId", auditHandler.UpdateFinding)
			audits.POST("/:id/responses", auditHandler.SubmitResponse)
			audits.GET("/:id/responses", auditHandler.ListResponses)
			audits.GET("/:id/compliance", auditHandler.Compliance)
		}

		// Checklist templates
		checklists := api.Group("/checklists")
		checklists.Use(requireAuth)
		{
			checklists.POST("", requireManager, checklistHandler.CreateTemplate)
			checklists.GET("", checklistHandler.ListTemplates)
			checklists.GET("/:id", checklistHandler.GetTemplate)
			checklists.PUT("/:id", requireManager, checklistHandler.UpdateTemplate)
			checklists.POST("/:id/items", requireManager, checklistHandler.AddItem)
			checklists.GET("/:id/items", checklistHandler.ListItems)
			checklists.DELETE("/:id/items/:itemId", requireManager, checklistHandler.DeleteItem)
		}

		// Certifications
		certs := api.Group("/certifications")
		certs.Use(requireAuth)
		{
			certs.POST("", requireManager, certHandler.Issue)
			certs.GET("", certHandler.List)
			certs.GET("/stats", certHandler.Stats)
			certs.GET("/expiring", certHandler.Expiring)
			certs.GET("/:id", certHandler.Get)
			certs.POST("/:id/renew", requireManager, certHandler.Renew)
			certs.POST("/:id/suspend", requireManager, certHandler.Suspend)
			certs.POST("/:id/revoke", requireManager, certHandler.Revoke)
			certs.POST("/:id/reactivate", requireManager, certHandler.Reactivate)
			certs.POST("/:id/surveillance", certHandler.RecordSurveillance)
			certs.GET("/:id/history", certHandler.History)
			certs.POST("/:id/document", certHandler.GenerateDocument)
		}

		// Leads and opportunities
		leads := api.Group("/leads")
		leads.Use(requireAuth)
		{
			leads.POST("", bizdevHandler.CreateLead)
			leads.GET("", bizdevHandler.ListLeads)
			leads.GET("/:id", bizdevHandler.GetLead)
			leads.PUT("/:id", bizdevHandler.UpdateLead)
			leads.POST("/:id/convert", bizdevHandler.ConvertLead)
		}
		opportunities := api.Group("/opportunities")
		opportunities.Use(requireAuth)
		{
			opportunities.GET("", bizdevHandler.ListOpportunities)
			opportunities.GET("/:id", bizdevHandler.GetOpportunity)
			opportunities.PUT("/:id", bizdevHandler.UpdateOpportunity)
		}

		// Proposals and contracts
		proposals := api.Group("/proposals")
		proposals.Use(requireAuth)
		{
			proposals.POST("", contractHandler.CreateProposal)
			proposals.GET("", contractHandler.ListProposals)
			proposals.GET("/:id", contractHandler.GetProposal)
			proposals.PUT("/:id/status", contractHandler.UpdateProposalStatus)
			proposals.PUT("/:id/items", contractHandler.ReplaceProposalItems)
			proposals.POST("/:id/document", contractHandler.GenerateProposalDocument)
		}
		contracts := api.Group("/contracts")
		contracts.Use(requireAuth)
		{
			contracts.POST("", contractHandler.CreateContract)
			contracts.GET("", contractHandler.ListContracts)
			contracts.GET("/:id", contractHandler.GetContract)
			contracts.POST("/:id/activate", requireManager, contractHandler.Activate)
			contracts.POST("/:id/close", requireManager, contractHandler.Close)
			contracts.POST("/:id/document", contractHandler.GenerateContractDocument)
		}

		// Employees and payroll
		employees := api.Group("/employees")
		employees.Use(requireAuth)
		{
			employees.POST("", requireManager, hrHandler.CreateEmployee)
			employees.GET("", hrHandler.ListEmployees)
			employees.GET("/auditors", hrHandler.ListQualifiedAuditors)
			employees.GET("/:id", hrHandler.GetEmployee)
			employees.PUT("/:id", requireManager, hrHandler.UpdateEmployee)
		}
		payrolls := api.Group("/payrolls")
		payrolls.Use(requireAuth, requireManager)
		{
			payrolls.POST("", hrHandler.CreatePayroll)
			payrolls.GET("", hrHandler.ListPayrolls)
			payrolls.GET("/cost", hrHandler.PayrollCost)
			payrolls.GET("/:id", hrHandler.GetPayroll)
			payrolls.POST("/:id/items", hrHandler.AddPayrollItem)
			payrolls.DELETE("/:id/items/:itemId", hrHandler.RemovePayrollItem)
			payrolls.POST("/:id/approve", hrHandler.ApprovePayroll)
			payrolls.POST("/:id/pay", hrHandler.MarkPayrollPaid)
		}

		// Tasks
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", taskHandler.Create)
			tasks.GET("", taskHandler.List)
			tasks.GET("/overdue", taskHandler.ListOverdue)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
		}

		// Documents
		documents := api.Group("/documents")
		documents.Use(requireAuth)
		{
			documents.POST("", documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.GET("/:id", documentHandler.Get)
			documents.GET("/:id/download", documentHandler.Download)
			documents.DELETE("/:id", documentHandler.Delete)
		}

		// Certification pipelines
		pipelines := api.Group("/pipelines")
		pipelines.Use(requireAuth)
		{
			pipelines.POST("", pipelineHandler.Create)
			pipelines.GET("", pipelineHandler.List)
			pipelines.GET("/board", pipelineHandler.Board)
			pipelines.GET("/stats", pipelineHandler.Stats)
			pipelines.GET("/:id", pipelineHandler.Get)
			pipelines.POST("/:id/advance", pipelineHandler.Advance)
			pipelines.GET("/:id/next-stages", pipelineHandler.NextStages)
			pipelines.GET("/:id/timeline", pipelineHandler.Timeline)
			pipelines.PUT("/:id/milestones/:milestoneId/complete", pipelineHandler.CompleteMilestone)
		}

		// Dashboards
		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("/overview", dashboardHandler.Overview)
			dashboard.GET("/financial", requireManager, dashboardHandler.Financial)
		}

		// Admin: templates and raw reporting
		admin := api.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.POST("/templates", adminHandler.CreateTemplate)
			admin.GET("/templates", adminHandler.ListTemplates)
			admin.GET("/templates/:id", adminHandler.GetTemplate)
			admin.PUT("/templates/:id", adminHandler.UpdateTemplate)
			admin.GET("/templates/:id/placeholders", adminHandler.TemplatePlaceholders)
			admin.POST("/reports/query", adminHandler.RunReport)
		}
	}
}
