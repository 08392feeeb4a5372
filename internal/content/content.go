// Package content loads the static portfolio data. The data is parsed once and
// handed out as copies so that no page can change what another page renders.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultDocument []byte

var (
	ErrParse   = errors.New("failed to parse content")
	ErrInvalid = errors.New("invalid content")
)

type Profile struct {
	Name           string `yaml:"name"`
	Initials       string `yaml:"initials"`
	Headline       string `yaml:"headline"`
	HeadlineAccent string `yaml:"headline_accent"`
	Summary        string `yaml:"summary"`
	Location       string `yaml:"location"`
	Email          string `yaml:"email"`
	Resume         string `yaml:"resume"`
	// SummaryHTML is Summary rendered from markdown.
	SummaryHTML string `yaml:"-"`
}

type Link struct {
	Href  string `yaml:"href"`
	Label string `yaml:"label"`
}

type Skill struct {
	Name            string `yaml:"name"`
	Level           int    `yaml:"level"`
	Description     string `yaml:"description"`
	DescriptionHTML string `yaml:"-"`
}

type ExpertiseArea struct {
	ID       string  `yaml:"id"`
	Category string  `yaml:"category"`
	Icon     string  `yaml:"icon"`
	Color    string  `yaml:"color"`
	Skills   []Skill `yaml:"skills"`
}

type Metric struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type Project struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Category     string   `yaml:"category"`
	Icon         string   `yaml:"icon"`
	Color        string   `yaml:"color"`
	Description  string   `yaml:"description"`
	Technologies []string `yaml:"technologies"`
	Features     []string `yaml:"features"`
	Metrics      []Metric `yaml:"metrics"`
	DemoURL      string   `yaml:"demo_url"`
	GithubURL    string   `yaml:"github_url"`
	Image        string   `yaml:"image"`

	DescriptionHTML string `yaml:"-"`
}

type Component struct {
	Name            string `yaml:"name"`
	Icon            string `yaml:"icon"`
	Description     string `yaml:"description"`
	Tech            string `yaml:"tech"`
	DescriptionHTML string `yaml:"-"`
}

// Tags splits the comma separated technology list. Blank entries are dropped.
func (c Component) Tags() []string {
	var tags []string
	for _, tag := range strings.Split(c.Tech, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

type Architecture struct {
	ID          string      `yaml:"id"`
	Label       string      `yaml:"label"`
	Icon        string      `yaml:"icon"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Components  []Component `yaml:"components"`

	DescriptionHTML string `yaml:"-"`
}

type Principle struct {
	Title           string `yaml:"title"`
	Icon            string `yaml:"icon"`
	Description     string `yaml:"description"`
	DescriptionHTML string `yaml:"-"`
}

type Channel struct {
	Title string `yaml:"title"`
	Value string `yaml:"value"`
	Href  string `yaml:"href"`
}

type Section struct {
	Heading string `yaml:"heading"`
	Intro   string `yaml:"intro"`
}

type ContactSection struct {
	Section      `yaml:",inline"`
	Pitch        string    `yaml:"pitch"`
	CalloutTitle string    `yaml:"callout_title"`
	Callout      string    `yaml:"callout"`
	Channels     []Channel `yaml:"channels"`
}

type Footer struct {
	Links   []Link `yaml:"links"`
	Credit  string `yaml:"credit"`
	Tagline string `yaml:"tagline"`
}

type document struct {
	Profile   Profile  `yaml:"profile"`
	Nav       []Link   `yaml:"nav"`
	HeroTags  []string `yaml:"hero_tags"`
	Social    []Link   `yaml:"social"`
	Expertise struct {
		Section `yaml:",inline"`
		Areas   []ExpertiseArea `yaml:"areas"`
	} `yaml:"expertise"`
	Projects struct {
		Section `yaml:",inline"`
		Items   []Project `yaml:"items"`
	} `yaml:"projects"`
	Architecture struct {
		Section    `yaml:",inline"`
		Tabs       []Architecture `yaml:"tabs"`
		Principles []Principle    `yaml:"principles"`
	} `yaml:"architecture"`
	Contact ContactSection `yaml:"contact"`
	Footer  Footer         `yaml:"footer"`
}

// Site is the immutable content of the portfolio.
type Site struct {
	doc document
}

// Load parses the embedded content.
func Load() (*Site, error) {
	return Parse(defaultDocument)
}

// Parse reads a content document and validates it.
func Parse(data []byte) (*Site, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(err, ErrParse)
	}

	if err := doc.renderMarkdown(); err != nil {
		return nil, errors.Join(err, ErrParse)
	}

	site := &Site{doc: doc}
	if err := site.Validate(); err != nil {
		return nil, err
	}

	return site, nil
}

func markdown(src string) (string, error) {
	var out bytes.Buffer
	if err := goldmark.Convert([]byte(src), &out); err != nil {
		return "", err
	}

	return out.String(), nil
}

// renderMarkdown fills the HTML twin of every markdown field.
func (d *document) renderMarkdown() error {
	var err error
	if d.Profile.SummaryHTML, err = markdown(d.Profile.Summary); err != nil {
		return err
	}

	for i := range d.Expertise.Areas {
		skills := d.Expertise.Areas[i].Skills
		for j := range skills {
			if skills[j].DescriptionHTML, err = markdown(skills[j].Description); err != nil {
				return err
			}
		}
	}

	for i := range d.Projects.Items {
		if d.Projects.Items[i].DescriptionHTML, err = markdown(d.Projects.Items[i].Description); err != nil {
			return err
		}
	}

	for i := range d.Architecture.Tabs {
		tab := &d.Architecture.Tabs[i]
		if tab.DescriptionHTML, err = markdown(tab.Description); err != nil {
			return err
		}
		for j := range tab.Components {
			if tab.Components[j].DescriptionHTML, err = markdown(tab.Components[j].Description); err != nil {
				return err
			}
		}
	}

	for i := range d.Architecture.Principles {
		principle := &d.Architecture.Principles[i]
		if principle.DescriptionHTML, err = markdown(principle.Description); err != nil {
			return err
		}
	}

	return nil
}

func (s *Site) Validate() error {
	if len(s.doc.Projects.Items) == 0 {
		return fmt.Errorf("%w: no projects", ErrInvalid)
	}
	if len(s.doc.Architecture.Tabs) == 0 {
		return fmt.Errorf("%w: no architecture tabs", ErrInvalid)
	}

	projectIDs := make([]string, 0, len(s.doc.Projects.Items))
	for _, project := range s.doc.Projects.Items {
		projectIDs = append(projectIDs, project.ID)
	}
	if err := uniqueIDs("project", projectIDs); err != nil {
		return err
	}

	if err := uniqueIDs("architecture", s.ArchitectureIDs()); err != nil {
		return err
	}

	areaIDs := make([]string, 0, len(s.doc.Expertise.Areas))
	for _, area := range s.doc.Expertise.Areas {
		areaIDs = append(areaIDs, area.ID)
		for _, skill := range area.Skills {
			if skill.Level < 0 || skill.Level > 100 {
				return fmt.Errorf("%w: skill %q level %d out of range", ErrInvalid, skill.Name, skill.Level)
			}
		}
	}
	if err := uniqueIDs("expertise", areaIDs); err != nil {
		return err
	}

	for _, item := range s.doc.Nav {
		if !strings.HasPrefix(item.Href, "#") || len(item.Href) < 2 {
			return fmt.Errorf("%w: nav href %q is not an anchor", ErrInvalid, item.Href)
		}
	}

	return nil
}

func uniqueIDs(kind string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty %s id", ErrInvalid, kind)
		}
		if _, found := seen[id]; found {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalid, kind, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

func (s *Site) Profile() Profile {
	return s.doc.Profile
}

func (s *Site) Nav() []Link {
	return slices.Clone(s.doc.Nav)
}

// HasAnchor reports whether href is one of the navigation anchors.
func (s *Site) HasAnchor(href string) bool {
	return slices.ContainsFunc(s.doc.Nav, func(l Link) bool { return l.Href == href }) || href == "#contact"
}

func (s *Site) HeroTags() []string {
	return slices.Clone(s.doc.HeroTags)
}

func (s *Site) Social() []Link {
	return slices.Clone(s.doc.Social)
}

func (s *Site) ExpertiseSection() Section {
	return s.doc.Expertise.Section
}

func (s *Site) Expertise() []ExpertiseArea {
	areas := slices.Clone(s.doc.Expertise.Areas)
	for i := range areas {
		areas[i].Skills = slices.Clone(areas[i].Skills)
	}

	return areas
}

func (s *Site) ProjectsSection() Section {
	return s.doc.Projects.Section
}

func (s *Site) Projects() []Project {
	projects := slices.Clone(s.doc.Projects.Items)
	for i := range projects {
		projects[i] = projects[i].clone()
	}

	return projects
}

func (s *Site) ProjectIDs() []string {
	ids := make([]string, 0, len(s.doc.Projects.Items))
	for _, project := range s.doc.Projects.Items {
		ids = append(ids, project.ID)
	}

	return ids
}

func (s *Site) Project(id string) (Project, bool) {
	for _, project := range s.doc.Projects.Items {
		if project.ID == id {
			return project.clone(), true
		}
	}

	return Project{}, false
}

func (p Project) clone() Project {
	p.Technologies = slices.Clone(p.Technologies)
	p.Features = slices.Clone(p.Features)
	p.Metrics = slices.Clone(p.Metrics)

	return p
}

func (s *Site) ArchitectureSection() Section {
	return s.doc.Architecture.Section
}

func (s *Site) Architectures() []Architecture {
	tabs := slices.Clone(s.doc.Architecture.Tabs)
	for i := range tabs {
		tabs[i].Components = slices.Clone(tabs[i].Components)
	}

	return tabs
}

func (s *Site) ArchitectureIDs() []string {
	ids := make([]string, 0, len(s.doc.Architecture.Tabs))
	for _, tab := range s.doc.Architecture.Tabs {
		ids = append(ids, tab.ID)
	}

	return ids
}

func (s *Site) Architecture(id string) (Architecture, bool) {
	for _, tab := range s.doc.Architecture.Tabs {
		if tab.ID == id {
			tab.Components = slices.Clone(tab.Components)

			return tab, true
		}
	}

	return Architecture{}, false
}

func (s *Site) Principles() []Principle {
	return slices.Clone(s.doc.Architecture.Principles)
}

func (s *Site) Contact() ContactSection {
	contact := s.doc.Contact
	contact.Channels = slices.Clone(contact.Channels)

	return contact
}

func (s *Site) Footer() Footer {
	footer := s.doc.Footer
	footer.Links = slices.Clone(footer.Links)

	return footer
}
