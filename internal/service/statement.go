package service

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// buildStatement renders a closed period's transactions and closing balance
// as a CSV statement for archival.
func buildStatement(start, end time.Time, transactions []*domain.PointTransaction, closing domain.BalanceSnapshot) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"period_start", "period_end"})
	w.Write([]string{start.Format("2006-01-02"), end.Format("2006-01-02")})
	w.Write(nil)

	w.Write([]string{"date", "description", "category", "points", "module_id"})
	for _, tx := range transactions {
		moduleID := ""
		if tx.ModuleID != nil {
			moduleID = strconv.Itoa(int(*tx.ModuleID))
		}
		w.Write([]string{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			string(tx.Category),
			tx.Points.String(),
			moduleID,
		})
	}
	w.Write(nil)

	w.Write([]string{"used_points", "remaining_points", "carry_over_points", "utilization_percent"})
	w.Write([]string{
		closing.UsedPoints.String(),
		closing.RemainingPoints.String(),
		closing.CarryOverPoints.String(),
		strconv.Itoa(int(closing.UtilizationPercent)),
	})

	w.Flush()
	return buf.Bytes()
}
