package web

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/justestif/valora/internal/questionnaire"
	"github.com/justestif/valora/internal/quizstore"
)

const quizCookieName = "quiz_id"

// Flash messages for rejected questionnaire input.
const (
	msgRateLastItem = "Please select a rating for the last question."
	msgRateEnergy   = "Please select a rating for your energy level."
	msgRestart      = "A valence score is missing. Please restart."
	msgPickOption   = "Please choose one of the options."
	msgAlreadyDone  = "That step is already done."
	msgItemChanged  = "That answer was already recorded. Please rate the word shown."
)

var valenceOptions = []ValenceOption{
	{Value: 1, Label: "Very unpleasant", Face: "😞"},
	{Value: 2.5, Label: "Unpleasant", Face: "🙁"},
	{Value: 5, Label: "Neutral", Face: "😐"},
	{Value: 7.5, Label: "Pleasant", Face: "🙂"},
	{Value: 10, Label: "Very pleasant", Face: "😄"},
}

// Questionnaire renders the current questionnaire step (GET /questionnaire).
// ?restart=1 throws the current answers away.
func (h *Handlers) Questionnaire(w http.ResponseWriter, r *http.Request) {
	session, ok := h.pageSession(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("restart") != "" {
		h.resetQuiz(w, r)
		http.Redirect(w, r, "/questionnaire", http.StatusSeeOther)
		return
	}

	_, state, err := h.loadQuiz(r)
	if errors.Is(err, quizstore.ErrNotFound) {
		state, err = h.startQuiz(w, r)
	}
	if err != nil {
		log.Printf("web: %v", err)
		http.Error(w, "Failed to load questionnaire", http.StatusInternalServerError)
		return
	}

	h.renderQuiz(w, r, session, state, nil, http.StatusOK)
}

// Rate records a rating for the current item (POST /questionnaire/rate).
// The form names the item it was rendered for, so a resubmitted form cannot
// rate an item the user has not seen.
func (h *Handlers) Rate(w http.ResponseWriter, r *http.Request) {
	h.quizEvent(w, r, func(n *questionnaire.Navigator) error {
		return n.RateItem(r.PostFormValue("item"), formInt(r, "rating"))
	})
}

// Proceed leaves the item stage (POST /questionnaire/proceed).
func (h *Handlers) Proceed(w http.ResponseWriter, r *http.Request) {
	h.quizEvent(w, r, func(n *questionnaire.Navigator) error {
		return n.Proceed()
	})
}

// Valence records the valence answer (POST /questionnaire/valence).
func (h *Handlers) Valence(w http.ResponseWriter, r *http.Request) {
	h.quizEvent(w, r, func(n *questionnaire.Navigator) error {
		v, err := strconv.ParseFloat(r.PostFormValue("valence"), 64)
		if err != nil {
			v = questionnaire.NoSelection
		}
		return n.SelectValence(v)
	})
}

// Submit records the arousal answer and finishes (POST /questionnaire/submit).
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	h.quizEvent(w, r, func(n *questionnaire.Navigator) error {
		_, err := n.Submit(formInt(r, "arousal"))
		return err
	})
}

// quizEvent loads the questionnaire, applies one event and either redirects
// to the next step or re-renders the current one with a message. The stored
// state only changes when the event is accepted.
func (h *Handlers) quizEvent(w http.ResponseWriter, r *http.Request, event func(*questionnaire.Navigator) error) {
	session, ok := h.pageSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	key, state, err := h.loadQuiz(r)
	if errors.Is(err, quizstore.ErrNotFound) {
		http.Redirect(w, r, "/questionnaire", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Printf("web: %v", err)
		http.Error(w, "Failed to load questionnaire", http.StatusInternalServerError)
		return
	}

	var mood questionnaire.Mood
	nav := questionnaire.NewNavigator(state, func(m questionnaire.Mood) { mood = m })

	if err := event(nav); err != nil {
		h.renderQuiz(w, r, session, nav.State(), &FlashMessage{Type: "error", Message: quizMessage(nav.State(), err)}, http.StatusUnprocessableEntity)
		return
	}

	if mood != "" {
		h.resetQuiz(w, r)
		http.Redirect(w, r, recommendationsURL(mood), http.StatusSeeOther)
		return
	}

	if err := h.quizzes.Save(ctx, key, nav.State()); err != nil {
		log.Printf("web: %v", err)
		http.Error(w, "Failed to save questionnaire", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/questionnaire", http.StatusSeeOther)
}

func (h *Handlers) loadQuiz(r *http.Request) (string, questionnaire.State, error) {
	cookie, err := r.Cookie(quizCookieName)
	if err != nil || cookie.Value == "" {
		return "", questionnaire.State{}, quizstore.ErrNotFound
	}
	state, err := h.quizzes.Load(r.Context(), cookie.Value)
	return cookie.Value, state, err
}

func (h *Handlers) startQuiz(w http.ResponseWriter, r *http.Request) (questionnaire.State, error) {
	key := quizstore.NewKey()
	state := questionnaire.NewState(h.rand)
	if err := h.quizzes.Save(r.Context(), key, state); err != nil {
		return questionnaire.State{}, err
	}
	setCookie(w, quizCookieName, key, h.quizTTL)
	return state, nil
}

// resetQuiz drops the questionnaire bound to the request, if any.
func (h *Handlers) resetQuiz(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(quizCookieName)
	if err != nil {
		return
	}
	if err := h.quizzes.Delete(r.Context(), cookie.Value); err != nil {
		log.Printf("web: %v", err)
	}
	clearCookie(w, quizCookieName)
}

func (h *Handlers) renderQuiz(w http.ResponseWriter, r *http.Request, session *Session, state questionnaire.State, flash *FlashMessage, status int) {
	if state.Stage == questionnaire.StageComplete {
		http.Redirect(w, r, recommendationsURL(state.Mood), http.StatusSeeOther)
		return
	}

	pos, total := state.Progress()
	data := QuestionnairePageData{
		PageData:       h.pageData(r, session, "How are you feeling?"),
		Stage:          state.Stage.String(),
		Position:       pos,
		Total:          total,
		Ratings:        []int{1, 2, 3, 4, 5},
		CanProceed:     state.CanProceed(),
		Encouragement:  state.Encouragement(),
		ValenceOptions: valenceOptions,
		ArousalOptions: []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
	data.Flash = flash
	if it, ok := state.CurrentItem(); ok {
		data.Item = it.Label
	}
	if rating, ok := state.CurrentRating(); ok {
		data.Rating = rating
	}

	h.render(w, status, "questionnaire", data)
}

// quizMessage turns a rejected event into a message for the user.
func quizMessage(state questionnaire.State, err error) string {
	switch {
	case errors.Is(err, questionnaire.ErrInvariant):
		return msgRestart
	case errors.Is(err, questionnaire.ErrIncomplete) && state.Stage == questionnaire.StageArousal:
		return msgRateEnergy
	case errors.Is(err, questionnaire.ErrIncomplete):
		return msgRateLastItem
	case errors.Is(err, questionnaire.ErrStaleItem):
		return msgItemChanged
	case errors.Is(err, questionnaire.ErrWrongStage):
		return msgAlreadyDone
	default:
		return msgPickOption
	}
}

func recommendationsURL(mood questionnaire.Mood) string {
	return "/recommendations?mood=" + url.QueryEscape(string(mood))
}

// formInt reads an integer form value. Missing or malformed values read as
// questionnaire.NoSelection.
func formInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.PostFormValue(key))
	if err != nil {
		return questionnaire.NoSelection
	}
	return v
}
