package migrations

import (
	"context"

	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-catalog-auth"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*auth.User)(nil)).
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*auth.User)(nil)).
			IfExists().
			Exec(ctx)
		return err
	})
}
