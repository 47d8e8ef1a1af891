package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/handlers"
	"github.com/KarlaDampilag/dailysalesexpenses/pkg/lambda"
	"github.com/KarlaDampilag/dailysalesexpenses/pkg/server"
)

func newRouter(container *server.Container) *lambda.Router {
	reportHandler := handlers.NewReportHandler(container.ReportService, container.Location)

	router := lambda.NewRouter()
	router.Handle(http.MethodGet, "/api/v1/reports/summary", reportHandler.HandleSummary)
	router.Handle(http.MethodGet, "/api/v1/reports/monthly", reportHandler.HandleMonthly)
	router.Handle(http.MethodGet, "/api/v1/reports/top-products", reportHandler.HandleTopProducts)
	router.Handle(http.MethodGet, "/api/v1/reports/top-categories", reportHandler.HandleTopCategories)
	router.Handle(http.MethodGet, "/api/v1/reports/top-customers", reportHandler.HandleTopCustomers)
	router.Handle(http.MethodGet, "/api/v1/reports/dashboard", reportHandler.HandleDashboard)
	router.Handle(http.MethodGet, "/api/v1/sales/{id}/valuation", reportHandler.HandleSaleValuation)
	return router
}

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	container, err := server.GetConnectionManager().GetContainer(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize container")
		return lambda.JSONError(http.StatusInternalServerError, "Internal server error").ToAPIGateway(), nil
	}

	resp, err := newRouter(container).Serve(ctx, lambda.NewRequest(event))
	if err != nil {
		container.Logger.WithError(err).WithField("path", event.Path).Error("Lambda handler failed")
		return lambda.JSONError(http.StatusInternalServerError, "Internal server error").ToAPIGateway(), nil
	}

	return resp.ToAPIGateway(), nil
}

func main() {
	awslambda.Start(handler)
}
