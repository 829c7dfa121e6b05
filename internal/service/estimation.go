package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/calendar"
	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/metrics"
	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// ProviderTimeout est le budget de temps d'un appel au fournisseur.
// Une seule tentative par requête ; pas de retry interne.
const ProviderTimeout = 15 * time.Second

// DateLayout est le format d'affichage des dates de livraison (jj/mm/aaaa)
const DateLayout = "02/01/2006"

// États du pipeline d'estimation
const (
	StateComposing          = "composing"
	StateAwaitingCompletion = "awaiting_completion"
	StateParsing            = "parsing"
	StateScoring            = "scoring"
	StateDone               = "done"
	StateError              = "error"
)

// CompletionProvider est la capacité « complétion d'un modèle de langage »
type CompletionProvider interface {
	Complete(ctx context.Context, systemMsg, prompt string) (string, error)
}

// FeedbackStore est la capacité « historique de feedbacks », append-only
type FeedbackStore interface {
	Append(record model.FeedbackRecord) error
	ReadAll() ([]model.FeedbackRecord, error)
}

// ProgressSink reçoit les transitions d'état du pipeline (hub websocket)
type ProgressSink interface {
	EstimationProgress(estimationID, state, message string)
}

// EstimationService orchestre le pipeline : composition du prompt, appel au
// fournisseur, parsing, scoring, date de livraison. Stateless entre deux
// requêtes, hors store de feedback partagé.
type EstimationService struct {
	provider CompletionProvider
	store    FeedbackStore
	buffer   BufferPolicy
	progress ProgressSink
}

// NewEstimationService crée le service d'estimation
func NewEstimationService(provider CompletionProvider, store FeedbackStore) *EstimationService {
	return &EstimationService{
		provider: provider,
		store:    store,
		buffer:   DefaultBufferPolicy,
	}
}

// WithBufferPolicy remplace la politique de marge par défaut
func (s *EstimationService) WithBufferPolicy(p BufferPolicy) *EstimationService {
	s.buffer = p
	return s
}

// WithProgressSink branche un récepteur de progression (optionnel)
func (s *EstimationService) WithProgressSink(sink ProgressSink) *EstimationService {
	s.progress = sink
	return s
}

// Estimate exécute le pipeline complet pour une requête.
// InputError et ProviderError sont fatals ; tout le reste (zéro tâche, pas de
// date, pas de signal de biais) est absorbé dans le résultat.
func (s *EstimationService) Estimate(ctx context.Context, req model.EstimationRequest) (*model.EstimationResult, error) {
	log := logger.Get(ctx)
	estimationID := logger.GetEstimationID(ctx)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Composing : biais historique puis prompt
	s.notify(estimationID, StateComposing, "Composition du prompt")

	bias := s.readBias(ctx)
	prompt := ComposePrompt(req, req.Velocity, bias)

	log.Debug().
		Int("prompt_len", len(prompt)).
		Bool("bias_signal", bias != nil).
		Msg("Prompt composé")

	// AwaitingCompletion : unique appel au fournisseur, budget borné
	s.notify(estimationID, StateAwaitingCompletion, "Appel au modèle")

	callCtx, cancel := context.WithTimeout(ctx, ProviderTimeout)
	defer cancel()

	completion, err := s.provider.Complete(callCtx, SystemPreamble, prompt)
	if err != nil {
		s.notify(estimationID, StateError, "Échec du fournisseur")
		metrics.Get().IncrementProviderErrors(errors.Is(err, model.ErrProviderTimeout))
		log.Error().Err(err).Msg("Échec de l'appel au fournisseur")
		return nil, err
	}

	// Parsing : jamais fatal, zéro tâche = résultat dégradé
	s.notify(estimationID, StateParsing, "Analyse de la réponse")

	parsed := ParseCompletion(completion)
	if len(parsed.Tasks) == 0 {
		metrics.Get().IncrementParseShortfalls()
		log.Warn().Msg("Aucune tâche reconnue dans la complétion")
	}

	// Scoring
	s.notify(estimationID, StateScoring, "Calcul du score de confiance")

	scored := ComputeConfidence(parsed.Tasks, req.Dependencies, req.Risks, req.Velocity, bias)
	bufferDays := s.buffer(req.Dependencies, req.Sector, req.ClientType, req.Constraints)

	result := &model.EstimationResult{
		Tasks:           parsed.Tasks,
		TotalDays:       parsed.TotalDays,
		BufferDays:      bufferDays,
		DeliveryDate:    s.deliveryDate(req, parsed, bufferDays),
		ConfidenceScore: scored.Score,
		ScoreDetails:    scored.Details,
		AIText:          strings.TrimSpace(completion),
		AICorrection:    correctionAnnotation(bias),
	}

	s.notify(estimationID, StateDone, "Estimation terminée")
	metrics.Get().IncrementEstimations(len(result.Tasks))

	log.Info().
		Int("tasks", len(result.Tasks)).
		Float64("total_days", result.TotalDays).
		Int("buffer_days", result.BufferDays).
		Int("confidence", result.ConfidenceScore).
		Str("delivery_date", result.DeliveryDate).
		Msg("Estimation terminée")

	return result, nil
}

// SuggestTasks demande au modèle un simple découpage en tâches, sans durées.
func (s *EstimationService) SuggestTasks(ctx context.Context, feature string) ([]string, error) {
	if strings.TrimSpace(feature) == "" {
		return nil, fmt.Errorf("%w : description de fonctionnalité vide", model.ErrInvalidInput)
	}

	prompt := fmt.Sprintf("Voici une description fonctionnelle : %q. Découpe-la en tâches techniques claires et concises, sans estimation de temps, sous forme de liste.", feature)

	callCtx, cancel := context.WithTimeout(ctx, ProviderTimeout)
	defer cancel()

	completion, err := s.provider.Complete(callCtx, "Tu es un assistant expert en gestion de projet technique.", prompt)
	if err != nil {
		metrics.Get().IncrementProviderErrors(errors.Is(err, model.ErrProviderTimeout))
		return nil, err
	}

	return ExtractBulletList(completion), nil
}

// ExtractBulletList extrait les lignes d'une liste à puces ou numérotée
func ExtractBulletList(text string) []string {
	var tasks []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(line, "-*•0123456789. \t")
		line = strings.TrimSpace(line)
		if line != "" {
			tasks = append(tasks, line)
		}
	}
	return tasks
}

func validateRequest(req model.EstimationRequest) error {
	if strings.TrimSpace(req.Feature) == "" {
		return fmt.Errorf("%w : description de fonctionnalité vide", model.ErrInvalidInput)
	}
	if req.TeamCapacity < 0 || req.TeamCapacity > 100 {
		return fmt.Errorf("%w : capacité hors bornes [0,100]", model.ErrInvalidInput)
	}
	for _, d := range req.Dependencies {
		switch d.Level {
		case "", model.LevelCritique, model.LevelModeree, model.LevelMineure:
		default:
			return fmt.Errorf("%w : niveau de criticité inconnu %q", model.ErrInvalidInput, d.Level)
		}
	}
	return nil
}

// readBias lit la fenêtre récente de feedbacks et calcule le biais.
// Un store illisible dégrade en « pas de signal », jamais en échec.
func (s *EstimationService) readBias(ctx context.Context) *model.BiasResult {
	if s.store == nil {
		return nil
	}
	records, err := s.store.ReadAll()
	if err != nil {
		logger.Get(ctx).Warn().Err(err).Msg("Store de feedback illisible, pas de signal de biais")
		return nil
	}
	return EstimateBias(RecentWindow(records, BiasWindow))
}

// deliveryDate calcule la date via le moteur calendaire ; celle-ci est
// autoritaire. Sans date de démarrage, on retombe sur la date extraite du
// texte du modèle, s'il en a fourni une.
func (s *EstimationService) deliveryDate(req model.EstimationRequest, parsed ParseResult, bufferDays int) string {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil || start.IsZero() {
		return parsed.DeliveryDate
	}

	duration := parsed.TotalDays + float64(bufferDays)

	var holidays calendar.HolidaySet
	if req.ExcludeHolidays {
		// couvre largement l'horizon de livraison
		lastYear := start.AddDate(0, 0, int(duration)*2+30).Year()
		holidays = calendar.FrenchHolidaysSpan(start.Year(), lastYear)
	}

	d := calendar.ComputeDeliveryDate(start, duration, req.ExcludeWeekends, holidays)
	if d.IsZero() {
		return parsed.DeliveryDate
	}
	return d.Format(DateLayout)
}

// correctionAnnotation rend l'annotation de correction quand le biais dépasse
// le seuil de matérialité (pourcentage signé + texte explicatif).
func correctionAnnotation(bias *model.BiasResult) string {
	if !BiasIsMaterial(bias) {
		return ""
	}
	return fmt.Sprintf("Correction appliquée : %+.0f%% (tendance « %s » sur les %d dernières estimations)",
		bias.AveragePercent, bias.Trend, bias.Count)
}

func (s *EstimationService) notify(estimationID, state, message string) {
	if s.progress == nil || estimationID == "" {
		return
	}
	s.progress.EstimationProgress(estimationID, state, message)
}
