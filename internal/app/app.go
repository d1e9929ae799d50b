package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"kareerbot/internal/agent"
	"kareerbot/internal/chunker"
	"kareerbot/internal/extract"
	"kareerbot/internal/ledger"
	"kareerbot/internal/skills"
	"kareerbot/internal/util"
	"kareerbot/internal/vecstore"
	"kareerbot/pkg/ai"
	"kareerbot/pkg/auth"
	"kareerbot/pkg/domain"
	"kareerbot/pkg/storage"
	"kareerbot/pkg/store"
)

// App wires the resume pipeline, chat, agent, auth and plan persistence
// together. Handlers call into it and translate error kinds to statuses.
type App struct {
	users     store.Store
	sessions  store.SessionStore
	ledger    *ledger.Ledger
	vectors   *vecstore.Manager
	splitter  *chunker.Splitter
	skills    *skills.Filter
	agent     *agent.Agent
	generator ai.TextGenerator
	objects   storage.ObjectStore // optional resume archival
}

// Deps lists the collaborators an App needs. Objects may be nil.
type Deps struct {
	Users     store.Store
	Sessions  store.SessionStore
	Ledger    *ledger.Ledger
	Vectors   *vecstore.Manager
	Splitter  *chunker.Splitter
	Skills    *skills.Filter
	Agent     *agent.Agent
	Generator ai.TextGenerator
	Objects   storage.ObjectStore
}

func New(deps Deps) (*App, error) {
	switch {
	case deps.Users == nil:
		return nil, errors.New("user store required")
	case deps.Sessions == nil:
		return nil, errors.New("session store required")
	case deps.Ledger == nil:
		return nil, errors.New("ledger required")
	case deps.Vectors == nil:
		return nil, errors.New("vector manager required")
	case deps.Splitter == nil:
		return nil, errors.New("splitter required")
	case deps.Generator == nil:
		return nil, errors.New("generator required")
	}
	return &App{
		users:     deps.Users,
		sessions:  deps.Sessions,
		ledger:    deps.Ledger,
		vectors:   deps.Vectors,
		splitter:  deps.Splitter,
		skills:    deps.Skills,
		agent:     deps.Agent,
		generator: deps.Generator,
		objects:   deps.Objects,
	}, nil
}

// ResolveToken maps a bearer token to a user ID.
func (a *App) ResolveToken(token string) (string, bool) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return "", false
	}
	return userID, true
}

// Upload is the resume input of ProcessResume: either a file (Filename +
// Data) or inline Text.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Text        string
}

// ProcessResumeResult is the response payload of the resume pipeline.
type ProcessResumeResult struct {
	Feedback   domain.Feedback `json:"feedback"`
	ResumeText string          `json:"resume_text"`
	Note       string          `json:"note,omitempty"`
}

var supportedUploadExts = map[string]bool{".pdf": true, ".docx": true, ".txt": true}

// ProcessResume extracts text from the upload, ingests it for the user
// unless the exact content was ingested before, and generates structured
// feedback. Duplicate uploads still get fresh feedback but are marked with
// note "duplicate" and cause no new ledger or vector writes.
func (a *App) ProcessResume(ctx context.Context, userID string, upload Upload) (ProcessResumeResult, error) {
	var result ProcessResumeResult

	text, source, err := a.resumeText(upload)
	if err != nil {
		return result, err
	}
	result.ResumeText = text

	hash := ledger.Fingerprint(text)
	duplicate := a.ledger.ContainsHash(userID, hash)
	if duplicate {
		result.Note = "duplicate"
	} else {
		chunks := a.splitter.Split(text)
		if _, err := a.vectors.Ingest(ctx, userID, chunks, source); err != nil {
			return result, fmt.Errorf("%w: ingest resume: %v", ErrUpstream, err)
		}
		if err := a.ledger.Append(userID, domain.IngestedDocument{
			Source:      source,
			Text:        text,
			ContentHash: hash,
			Timestamp:   time.Now().UTC(),
		}); err != nil {
			return result, fmt.Errorf("record ingestion: %w", err)
		}
		a.archiveUpload(ctx, userID, upload)
	}

	feedback, err := a.generateFeedback(ctx, text)
	if err != nil {
		return result, err
	}
	result.Feedback = feedback
	return result, nil
}

func (a *App) resumeText(upload Upload) (text, source string, err error) {
	if upload.Filename != "" && len(upload.Data) > 0 {
		ext := strings.ToLower(filepath.Ext(upload.Filename))
		if !supportedUploadExts[ext] {
			return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
		}
		text, err := extract.FromUpload(upload.Filename, upload.Data)
		if err != nil {
			if errors.Is(err, extract.ErrNoText) {
				return "", "", fmt.Errorf("%w: file contains no text", ErrInvalidInput)
			}
			return "", "", fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return text, upload.Filename, nil
	}
	if text := extract.Normalize(upload.Text); text != "" {
		return text, domain.SourceFreeText, nil
	}
	return "", "", fmt.Errorf("%w: no resume file or text provided", ErrInvalidInput)
}

func (a *App) generateFeedback(ctx context.Context, resumeText string) (domain.Feedback, error) {
	reply, err := a.generator.GenerateText(ctx, feedbackSystemPrompt, "Resume:\n"+resumeText)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("%w: generate feedback: %v", ErrUpstream, err)
	}
	var feedback domain.Feedback
	if !ai.DecodeObject(reply, &feedback) || len(feedback.Strengths) == 0 || len(feedback.Improvements) == 0 {
		return domain.Feedback{}, fmt.Errorf("%w: feedback reply held no strengths/improvements object", ErrModelOutputInvalid)
	}
	return feedback, nil
}

// archiveUpload stores the original file in the object store when one is
// configured. Archive failures never fail an ingestion.
func (a *App) archiveUpload(ctx context.Context, userID string, upload Upload) {
	if a.objects == nil || len(upload.Data) == 0 || upload.Filename == "" {
		return
	}
	key := fmt.Sprintf("resumes/%s/%s-%s",
		util.SanitizePathSegment(userID),
		time.Now().UTC().Format("20060102T150405"),
		util.SanitizePathSegment(upload.Filename))
	if err := a.objects.Put(ctx, key, bytes.NewReader(upload.Data), int64(len(upload.Data)), upload.ContentType); err != nil {
		slog.Warn("resume archival failed", "user_id", userID, "key", key, "err", err)
	}
}

// Chat answers a question with resume context retrieved for the user, then
// scans the message for skill mentions and records new ones as synthetic
// chat-skill documents.
func (a *App) Chat(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	retrieve, err := a.vectors.Retriever(userID)
	if err != nil {
		if errors.Is(err, vecstore.ErrUnavailable) {
			return "", ErrNoResume
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	hits, err := retrieve(ctx, message)
	if err != nil {
		return "", fmt.Errorf("%w: retrieve context: %v", ErrUpstream, err)
	}
	reply, err := a.generator.GenerateText(ctx, chatSystemPrompt, chatUserPrompt(hits, message))
	if err != nil {
		return "", fmt.Errorf("%w: generate reply: %v", ErrUpstream, err)
	}

	a.captureSkills(ctx, userID, message)
	return strings.TrimSpace(reply), nil
}

// captureSkills is a best-effort side effect of a chat turn. Extraction
// results are joined into one synthetic document, deduplicated by exact
// text, and fed to both the ledger and the vector store. Failures are
// logged, never surfaced.
func (a *App) captureSkills(ctx context.Context, userID, message string) {
	if a.skills == nil {
		return
	}
	found := a.skills.Extract(ctx, message)
	if len(found) == 0 {
		return
	}
	text := strings.Join(found, ", ")
	if a.ledger.ContainsText(userID, text) {
		return
	}
	if err := a.ledger.Append(userID, domain.IngestedDocument{
		Source:      domain.SourceChatSkill,
		Text:        text,
		ContentHash: ledger.Fingerprint(text),
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		slog.Warn("skill capture ledger append failed", "user_id", userID, "err", err)
		return
	}
	if _, err := a.vectors.Ingest(ctx, userID, []string{text}, domain.SourceChatSkill); err != nil {
		slog.Warn("skill capture vector ingest failed", "user_id", userID, "err", err)
	}
}

// AgentPlan turns a goal into an ordered multi-step plan.
func (a *App) AgentPlan(ctx context.Context, goal string) (domain.Plan, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return domain.Plan{}, fmt.Errorf("%w: goal is required", ErrInvalidInput)
	}
	reply, err := a.generator.GenerateText(ctx, planSystemPrompt, "Goal: "+goal)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("%w: generate plan: %v", ErrUpstream, err)
	}
	var plan domain.Plan
	if !ai.DecodeObject(reply, &plan) || len(plan.Steps) == 0 {
		return domain.Plan{}, fmt.Errorf("%w: plan reply held no step list", ErrModelOutputInvalid)
	}
	if plan.Goal == "" {
		plan.Goal = goal
	}
	return plan, nil
}

// AgentQuery answers a question through the search-enabled agent loop.
func (a *App) AgentQuery(ctx context.Context, query string, history []agent.Turn, persona string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if a.agent == nil {
		return "", fmt.Errorf("%w: agent not configured", ErrUpstream)
	}
	reply, err := a.agent.Answer(ctx, query, history, persona)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return reply, nil
}

// PredictSuccess estimates how likely the resume owner is to reach the goal.
func (a *App) PredictSuccess(ctx context.Context, resumeText, goal string) (domain.Prediction, error) {
	resumeText = strings.TrimSpace(resumeText)
	goal = strings.TrimSpace(goal)
	if resumeText == "" || goal == "" {
		return domain.Prediction{}, fmt.Errorf("%w: resumeText and goal are required", ErrInvalidInput)
	}
	reply, err := a.generator.GenerateText(ctx, predictionSystemPrompt, predictionUserPrompt(resumeText, goal))
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: generate prediction: %v", ErrUpstream, err)
	}
	var prediction domain.Prediction
	if !ai.DecodeObject(reply, &prediction) || prediction.Likelihood == "" {
		return domain.Prediction{}, fmt.Errorf("%w: prediction reply held no likelihood object", ErrModelOutputInvalid)
	}
	return prediction, nil
}

// SavePlan persists the user's career plan, replacing any previous one.
func (a *App) SavePlan(userID string, plan domain.Plan) error {
	if strings.TrimSpace(plan.Goal) == "" && len(plan.Steps) == 0 {
		return fmt.Errorf("%w: plan is empty", ErrInvalidInput)
	}
	if err := a.users.SavePlan(userID, plan); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// LoadPlan returns the user's saved career plan.
func (a *App) LoadPlan(userID string) (domain.Plan, error) {
	plan, ok, err := a.users.GetPlan(userID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("load plan: %w", err)
	}
	if !ok {
		return domain.Plan{}, fmt.Errorf("%w: no saved plan", ErrNotFound)
	}
	return plan, nil
}

// CompareProfile analyzes everything the user has shared so far, resume
// uploads and captured chat skills, and reports gaps between the two.
func (a *App) CompareProfile(ctx context.Context, userID string) (string, int, error) {
	docs := a.ledger.Load(userID)
	if len(docs) == 0 {
		return "", 0, fmt.Errorf("%w: nothing ingested yet", ErrNotFound)
	}
	analysis, err := a.generator.GenerateText(ctx, compareSystemPrompt, compareUserPrompt(docs))
	if err != nil {
		return "", 0, fmt.Errorf("%w: generate analysis: %v", ErrUpstream, err)
	}
	return strings.TrimSpace(analysis), len(docs), nil
}

// Register creates an account keyed by the supplied contact, email when it
// contains "@", phone otherwise, and returns a session token.
func (a *App) Register(contact, password, username string) (domain.User, string, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" || password == "" {
		return domain.User{}, "", fmt.Errorf("%w: contact and password are required", ErrInvalidInput)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user := domain.User{
		ID:        util.NewID(),
		Username:  strings.TrimSpace(username),
		CreatedAt: time.Now().UTC(),
	}
	var existing bool
	var err error
	if isEmail(contact) {
		user.Email = contact
		_, existing, err = a.users.GetUserByEmail(contact)
	} else {
		user.Phone = contact
		_, existing, err = a.users.GetUserByPhone(contact)
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("lookup contact: %w", err)
	}
	if existing {
		return domain.User{}, "", fmt.Errorf("%w: %s", ErrAlreadyExists, contact)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := a.users.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login checks the password for the account behind contact and returns a
// session token. Unknown contacts and wrong passwords are distinct errors.
func (a *App) Login(contact, password string) (domain.User, string, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" || password == "" {
		return domain.User{}, "", fmt.Errorf("%w: contact and password are required", ErrInvalidInput)
	}
	var user domain.User
	var found bool
	var err error
	if isEmail(contact) {
		user, found, err = a.users.GetUserByEmail(contact)
	} else {
		user, found, err = a.users.GetUserByPhone(contact)
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("lookup contact: %w", err)
	}
	if !found {
		return domain.User{}, "", fmt.Errorf("%w: no account for %s", ErrNotFound, contact)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", fmt.Errorf("%w: wrong password", ErrUnauthorized)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

func isEmail(contact string) bool {
	return strings.Contains(contact, "@")
}
