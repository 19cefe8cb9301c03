package jobs

import (
	"context"

	"ugc-marketplace-backend/internal/logger"
)

// pendingDigestQuery returns one row per company owner with pending applications waiting on them.
const pendingDigestQuery = `
	SELECT co.id, co.trade_name, u.email, u.name, p.pending
	FROM (
		SELECT c.company_id, count(*) AS pending
		FROM applications a
		JOIN campaigns c ON c.id = a.campaign_id
		WHERE a.status = 'pending'
		GROUP BY c.company_id
	) p
	JOIN companies co ON co.id = p.company_id
	JOIN company_members m ON m.company_id = co.id AND m.role = 'owner'
	JOIN users u ON u.id = m.user_id
	ORDER BY co.id
`

// SendApplicationDigest emails company owners the number of applications awaiting a decision
func (jr *JobRunner) SendApplicationDigest() {
	jr.runWithRecovery("SendApplicationDigest", func(ctx context.Context) {
		rows, err := jr.db.QueryContext(ctx, pendingDigestQuery)
		if err != nil {
			logger.Error("Failed to query pending applications", "error", err)
			return
		}
		defer rows.Close()

		sent, failed := 0, 0
		for rows.Next() {
			var (
				companyID   int32
				companyName string
				email       string
				ownerName   string
				pending     int32
			)
			if err := rows.Scan(&companyID, &companyName, &email, &ownerName, &pending); err != nil {
				logger.Error("Failed to scan digest row", "error", err)
				continue
			}

			if err := jr.services.Email.SendApplicationDigest(ctx, email, ownerName, companyName, pending); err != nil {
				logger.Error("Failed to send application digest",
					"company_id", companyID,
					"email", email,
					"error", err)
				failed++
				continue
			}
			sent++
			logger.Debug("Sent application digest", "company_id", companyID, "email", email, "pending", pending)
		}

		if err := rows.Err(); err != nil {
			logger.Error("Error iterating digest rows", "error", err)
			return
		}
		logger.Info("Application digests sent", "sent", sent, "failed", failed)
	})
}
