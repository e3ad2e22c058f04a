// Package testutil starts the service's infrastructure components for tests
// and stops them again through t.Cleanup.
//
//	db := testutil.SQLite(t, user.Migrations, user.MigrationsDir(database.DriverSQLite))
//	repo := user.NewGormRepository(db.DB())
//
//	client, mini := testutil.Redis(t)
//
// Components are stopped in reverse start order, mirroring the registry.
package testutil
