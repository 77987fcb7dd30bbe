package main

import (
	"context"
	"log/slog"
	"os"

	"storefront/config"
	"storefront/internal/delivery"
	"storefront/internal/delivery/worker"
	logs "storefront/internal/infra/log"
	"storefront/internal/infra/payment"
	"storefront/internal/infra/persistence/postgres"
	"storefront/internal/usecase/impl"

	"go.uber.org/fx"
)

type startWorkerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		fx.Invoke(
			startWorker,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewOrderRepository,
			postgres.NewProductRepository,
			postgres.NewUserRepository,
			postgres.NewPaymentEventRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			payment.NewMercadoPagoGateway,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewPaymentService,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewWorker,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startWorker(ctx context.Context, params startWorkerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start worker", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
