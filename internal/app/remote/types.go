package remote

import (
	"time"

	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
	"github.com/seda-works/marketplace_layer/internal/app/domain/party"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
)

// Wire types mirror the adapter's native JSON shape: Mongo-style "_id",
// contract addresses, "__v" version counters. The translators below strip the
// internal-only fields and rename the rest into the domain model; nothing
// outside this package sees the adapter's field names.

type wireProject struct {
	ID                        string          `json:"_id"`
	ContractAddress           string          `json:"contractAddress"`
	Title                     string          `json:"title"`
	Summary                   string          `json:"summary"`
	Description               string          `json:"description"`
	URL                       string          `json:"url"`
	Budget                    string          `json:"budget"`
	DeliveryTime              string          `json:"deliveryTime"`
	DeliveryDate              string          `json:"deliveryDate"`
	State                     string          `json:"state"`
	CoordinatorApprovalStatus string          `json:"coordinatorApprovalStatus"`
	RejectionReason           string          `json:"rejectionReason"`
	Client                    string          `json:"client"`
	Coordinator               string          `json:"coordinator"`
	Milestones                []wireMilestone `json:"milestones"`
	CreatedAt                 string          `json:"createdAt"`
	UpdatedAt                 string          `json:"updatedAt"`
	Version                   int             `json:"__v"`
}

type wireMilestone struct {
	ID           string `json:"_id"`
	Project      string `json:"project"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Budget       string `json:"budget"`
	DeliveryTime string `json:"deliveryTime"`
	DeliveryDate string `json:"deliveryDate"`
	Order        int    `json:"order"`
	State        string `json:"state"`
	Developer    string `json:"developer"`
	Docs         string `json:"docs"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
	Version      int    `json:"__v"`
}

type wireParty struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Wallet    string `json:"wallet"`
	CreatedAt string `json:"createdAt"`
	Version   int    `json:"__v"`
}

// externalID prefers the contract address once the project is on chain; the
// surrogate "_id" only identifies projects the adapter has not deployed yet.
func (w wireProject) externalID() string {
	if w.ContractAddress != "" {
		return w.ContractAddress
	}
	return w.ID
}

func toProject(w wireProject) project.Project {
	return project.Project{
		ExternalID:              w.externalID(),
		Title:                   w.Title,
		Summary:                 w.Summary,
		Description:             w.Description,
		URL:                     w.URL,
		BudgetRef:               w.Budget,
		DeliveryTimeRef:         w.DeliveryTime,
		DeliveryDate:            parseTime(w.DeliveryDate),
		Status:                  project.Status(w.State),
		CoordinatorApproval:     w.CoordinatorApprovalStatus,
		ClientID:                w.Client,
		ConsultantID:            w.Coordinator,
		ProposalRejectionReason: w.RejectionReason,
		CreatedAt:               parseTime(w.CreatedAt),
		UpdatedAt:               parseTime(w.UpdatedAt),
	}
}

func toProjects(ws []wireProject) []project.Project {
	out := make([]project.Project, len(ws))
	for i, w := range ws {
		out[i] = toProject(w)
	}
	return out
}

func toMilestone(w wireMilestone) milestone.Milestone {
	return milestone.Milestone{
		ExternalID:      w.ID,
		ProjectID:       w.Project,
		Title:           w.Title,
		Description:     w.Description,
		Budget:          w.Budget,
		DeliveryTimeRef: w.DeliveryTime,
		DeliveryDate:    parseTime(w.DeliveryDate),
		DisplayOrder:    w.Order,
		Status:          milestone.Status(w.State),
		DeveloperID:     w.Developer,
		Docs:            w.Docs,
		CreatedAt:       parseTime(w.CreatedAt),
		UpdatedAt:       parseTime(w.UpdatedAt),
	}
}

func toMilestones(ws []wireMilestone) []milestone.Milestone {
	out := make([]milestone.Milestone, len(ws))
	for i, w := range ws {
		out[i] = toMilestone(w)
	}
	return out
}

func toClient(w wireParty) party.Client {
	return party.Client{
		ExternalID: w.ID,
		Name:       w.Name,
		Email:      w.Email,
		Wallet:     w.Wallet,
		CreatedAt:  parseTime(w.CreatedAt),
	}
}

func toDeveloper(w wireParty) party.Developer {
	return party.Developer{
		ExternalID: w.ID,
		Name:       w.Name,
		Email:      w.Email,
		Wallet:     w.Wallet,
		CreatedAt:  parseTime(w.CreatedAt),
	}
}

// parseTime tolerates the adapter omitting or mangling timestamps; a zero
// time is preferable to failing a whole read over a date field.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
