package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/doculens/backend/pkg/analysis"
	"github.com/doculens/backend/pkg/cache"
	"github.com/doculens/backend/pkg/store"
)

// App bundles the shared clients every handler needs. All collaborators are
// constructed once at startup and injected here; handlers never reach for
// globals.
type App struct {
	DBConn *pgxpool.Pool
	Queue  *amqp091.Channel
	S3     *s3.Client
	Cache  cache.Cache
	Store  store.Store
	Engine *analysis.Engine
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
