package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/internal/config"
	"github.com/agendafacil/agenda-api/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Company{},
		&models.CompanySettings{},
		&models.Profile{},
		&models.User{},
		&models.Service{},
		&models.WorkingHours{},
		&models.Client{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Exec(`
        UPDATE companies
        SET timezone = 'America/Sao_Paulo'
        WHERE timezone IS NULL OR timezone = ''
    `)

	// Fronteira real contra double-booking: as checagens do core são
	// advisory (read-then-act) e podem passar duas ao mesmo tempo;
	// quem decide é este índice parcial no commit do insert.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot
        ON appointments (company_id, appointment_date, appointment_time)
        WHERE status <> 'cancelled'
    `)

	// Change-feed para o slot-picker: qualquer escrita em appointments
	// vira um pg_notify que o realtime.Listener repassa por (empresa, dia).
	db.Exec(`
        CREATE OR REPLACE FUNCTION notify_appointments_changed() RETURNS trigger AS $$
        DECLARE
            rec appointments%ROWTYPE;
        BEGIN
            IF TG_OP = 'DELETE' THEN
                rec := OLD;
            ELSE
                rec := NEW;
            END IF;

            PERFORM pg_notify(
                'appointments_changed',
                json_build_object(
                    'event', lower(TG_OP),
                    'company_id', rec.company_id,
                    'appointment_date', rec.appointment_date
                )::text
            );

            RETURN rec;
        END;
        $$ LANGUAGE plpgsql
    `)

	db.Exec(`DROP TRIGGER IF EXISTS appointments_changed ON appointments`)
	db.Exec(`
        CREATE TRIGGER appointments_changed
        AFTER INSERT OR UPDATE OR DELETE ON appointments
        FOR EACH ROW EXECUTE FUNCTION notify_appointments_changed()
    `)

	return db
}
