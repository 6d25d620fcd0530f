package db

// RunMigrations creates the reservation schema.
func RunMigrations(db *DB) error {
	return db.AutoMigrate(&Item{}, &Reservation{}, &User{})
}
