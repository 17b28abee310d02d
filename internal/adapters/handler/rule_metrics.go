package handler

import (
	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_emitted_total",
			Help: "Diet recommendations emitted per condition",
		},
		[]string{"condition"},
	)

	riskAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_assessments_total",
			Help: "Risk assessments per condition and level",
		},
		[]string{"condition", "level"},
	)
)

func observeRecommendations(recommendations []domain.Recommendation) {
	for _, rec := range recommendations {
		recommendationsEmitted.WithLabelValues(rec.Condition.Key()).Inc()
	}
}

func observeAnalysis(analysis domain.RiskAnalysis) {
	for _, a := range analysis.Assessments {
		riskAssessments.WithLabelValues(a.Condition.Key(), string(a.RiskLevel)).Inc()
	}
}
