package intent

import (
	"context"

	"medibook/utils"

	"go.uber.org/zap"

	"medibook/models"
)

// PolicyClassifier owns the policy layer around the language-model service:
// deterministic fallback when the service fails or is unsure, and explicit,
// auditable demotion rules that keep side-effecting intents honest.
type PolicyClassifier struct {
	Primary       Classifier
	Fallback      *KeywordClassifier
	MinConfidence float64
}

// NewPolicyClassifier wires the primary service and the keyword fallback.
// Primary may be nil, in which case every turn goes through the fallback.
func NewPolicyClassifier(primary Classifier, minConfidence float64) *PolicyClassifier {
	return &PolicyClassifier{
		Primary:       primary,
		Fallback:      NewKeywordClassifier(),
		MinConfidence: minConfidence,
	}
}

func (p *PolicyClassifier) Classify(ctx context.Context, text string, turn TurnContext) (models.Classification, error) {
	cl, err := p.classifyPrimary(ctx, text, turn)
	if err != nil || cl.Confidence < p.MinConfidence {
		if err != nil {
			utils.GetLogger().Warn("classifier service failed, using keyword rules", zap.Error(err))
		}
		// The fallback is deterministic and cannot fail; a turn is never lost
		// to a classifier outage.
		cl, _ = p.Fallback.Classify(ctx, text, turn)
	}

	// Cannot book nothing: booking intents without a selected doctor demote to
	// search so the user first gets candidates to pick from.
	if (cl.Intent == models.IntentBook || cl.Intent == models.IntentConfirmBooking) &&
		turn.SelectedDoctor == "" && cl.DoctorRef == "" {
		utils.GetLogger().Debug("demoting booking intent without a selected doctor",
			zap.String("intent", string(cl.Intent)))
		cl.Intent = models.IntentSearch
	}
	return cl, nil
}

func (p *PolicyClassifier) classifyPrimary(ctx context.Context, text string, turn TurnContext) (models.Classification, error) {
	if p.Primary == nil {
		return models.Classification{}, ErrUnavailable
	}
	return p.Primary.Classify(ctx, text, turn)
}
