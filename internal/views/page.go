package views

import (
	"fmt"
	"strconv"

	"github.com/srich3/portfolio/internal/content"
	"github.com/srich3/portfolio/internal/session"
	"github.com/srich3/portfolio/internal/viewstate"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" //nolint:revive,stylecheck
)

// Page renders the whole document for p. Callers must hold the page lock.
func (r Renderer) Page(p *session.Page) g.Node {
	profile := r.Site.Profile()

	return r.document(profile.Name+" | Portfolio",
		g.Attr("data-page-id", p.ID),
		g.Attr("data-close-url", r.URL("ui/page/close")),
		hx("headers", fmt.Sprintf(`{"X-Page-Id": %q}`, p.ID)),
		Div(Class("min-h-screen"),
			r.Header(p),
			Main(
				r.heroSection(p),
				r.expertiseSection(p),
				r.projectsSection(p),
				r.architectureSection(p),
				r.contactSection(p),
			),
			r.Footer(p),
		),
	)
}

// Header is the navigation shell. It re-posts the scroll offset on every window scroll.
func (r Renderer) Header(p *session.Page) g.Node {
	profile := r.Site.Profile()
	nav := r.Site.Nav()
	open := p.Nav.MenuOpen()

	return Header(ID("site-header"),
		Class(classIf("site-header", p.Nav.Scrolled(), "scrolled")),
		hx("post", r.URL("ui/nav/scroll")),
		hx("trigger", "scroll from:window"),
		hx("vals", "js:{offset: window.scrollY}"),
		hx("swap", "outerHTML"),
		Nav(Class("nav"),
			Div(Class("brand"), icon("code"), Span(g.Text(profile.Name))),
			Div(Class("nav-desktop"),
				g.Map(nav, func(item content.Link) g.Node {
					return A(Href(item.Href), g.Text(item.Label))
				}),
				r.navigate("#contact", "btn-primary", icon("zap"), Span(g.Text("Get In Touch"))),
			),
			Button(Class("menu-toggle"), Type("button"),
				Aria("label", "Toggle menu"),
				Aria("expanded", strconv.FormatBool(open)),
				hx("post", r.URL("ui/nav/menu")),
				hx("target", "#site-header"),
				hx("swap", "outerHTML"),
				g.If(open, icon("x")),
				g.If(!open, icon("menu")),
			),
			g.If(open, Div(Class("nav-mobile"),
				g.Map(nav, func(item content.Link) g.Node {
					return r.navigate(item.Href, "nav-mobile-link", g.Text(item.Label))
				}),
				r.navigate("#contact", "btn-primary full", g.Text("Get In Touch")),
			)),
		),
	)
}

// navigate renders an in-page link that also closes the mobile menu.
func (r Renderer) navigate(href string, class string, children ...g.Node) g.Node {
	nodes := []g.Node{
		Href(href),
		Class(class),
		hx("post", r.URL("ui/nav/navigate")),
		hx("vals", fmt.Sprintf(`{"href": %q}`, href)),
		hx("target", "#site-header"),
		hx("swap", "outerHTML"),
	}

	return A(append(nodes, children...)...)
}

// reveal wraps children in an element that fades in the first time it is seen.
func (r Renderer) reveal(p *session.Page, id string, children ...g.Node) g.Node {
	revealed := p.Reveals.Revealed(id)
	nodes := []g.Node{
		ID("reveal-" + id),
		Class(classIf("reveal", revealed, "revealed")),
	}
	if !revealed {
		nodes = append(nodes,
			hx("post", r.URL("ui/reveal/"+id)),
			hx("trigger", "intersect once"),
			hx("swap", "outerHTML"),
		)
	}

	return Div(append(nodes, children...)...)
}

// Reveal renders the reveal element with the given id in its current state.
func (r Renderer) Reveal(p *session.Page, id string) (g.Node, bool) {
	switch id {
	case content.RevealHero:
		return r.heroBlock(p), true
	case content.RevealExpertiseHeading:
		return r.sectionHeading(p, id, r.Site.ExpertiseSection()), true
	case content.RevealProjectsHeading:
		return r.sectionHeading(p, id, r.Site.ProjectsSection()), true
	case content.RevealArchitectureHead:
		return r.sectionHeading(p, id, r.Site.ArchitectureSection()), true
	case content.RevealPrinciples:
		return r.principlesBlock(p), true
	case content.RevealContactHeading:
		return r.sectionHeading(p, id, r.Site.Contact().Section), true
	case content.RevealContactInfo:
		return r.contactInfoBlock(p), true
	case content.RevealContactCallout:
		return r.calloutBlock(p), true
	case content.RevealContactForm:
		return r.contactFormBlock(p), true
	case content.RevealFooterCredit:
		return r.footerCredit(p), true
	case content.RevealFooterTagline:
		return r.footerTagline(p), true
	}

	for _, area := range r.Site.Expertise() {
		if content.ExpertiseRevealID(area.ID) == id {
			return r.expertiseCard(p, area), true
		}
	}

	return nil, false
}

func (r Renderer) sectionHeading(p *session.Page, id string, section content.Section) g.Node {
	return r.reveal(p, id,
		Div(Class("section-heading"),
			H2(g.Text(section.Heading)),
			P(g.Text(section.Intro)),
		),
	)
}

func (r Renderer) heroSection(p *session.Page) g.Node {
	return Section(ID("hero"), Class("hero"), r.heroBlock(p))
}

func (r Renderer) heroBlock(p *session.Page) g.Node {
	profile := r.Site.Profile()

	return r.reveal(p, content.RevealHero,
		Div(Class("avatar"), g.Text(profile.Initials)),
		H1(
			g.Text(profile.Headline),
			Br(),
			Span(Class("gradient-text"), g.Text(profile.HeadlineAccent)),
		),
		Div(Class("hero-summary"), g.Raw(profile.SummaryHTML)),
		Div(Class("tags"),
			g.Map(r.Site.HeroTags(), func(tag string) g.Node {
				return Span(Class("tag"), g.Text(tag))
			}),
		),
		A(Class("btn-secondary"), Href(r.URL("resume")), g.Attr("download"),
			icon("download"), g.Text("Download Resume")),
		Div(Class("social"),
			g.Map(r.Site.Social(), func(link content.Link) g.Node {
				return externalLink(link.Href, Aria("label", link.Label), icon(link.Label))
			}),
		),
	)
}

func (r Renderer) expertiseSection(p *session.Page) g.Node {
	return Section(ID("expertise"), Class("section"),
		r.sectionHeading(p, content.RevealExpertiseHeading, r.Site.ExpertiseSection()),
		Div(Class("grid expertise-grid"),
			g.Map(r.Site.Expertise(), func(area content.ExpertiseArea) g.Node {
				return r.expertiseCard(p, area)
			}),
		),
	)
}

// expertiseCard renders skill bars empty until the card has been revealed.
func (r Renderer) expertiseCard(p *session.Page, area content.ExpertiseArea) g.Node {
	id := content.ExpertiseRevealID(area.ID)
	revealed := p.Reveals.Revealed(id)

	return r.reveal(p, id,
		Div(Class("tech-card"),
			Div(Class("card-icon"), icon(area.Icon)),
			H3(g.Text(area.Category)),
			g.Map(area.Skills, func(skill content.Skill) g.Node {
				width := 0
				if revealed {
					width = skill.Level
				}

				return Div(Class("skill"),
					Div(Class("skill-label"),
						Span(g.Text(skill.Name)),
						Span(Class("skill-level"), g.Textf("%d%%", skill.Level)),
					),
					Div(Class("bar"),
						Div(Class("bar-fill "+area.Color), Style(fmt.Sprintf("width: %d%%", width))),
					),
					g.If(skill.Description != "", g.Raw(skill.DescriptionHTML)),
				)
			}),
		),
	)
}

func (r Renderer) projectsSection(p *session.Page) g.Node {
	return Section(ID("projects"), Class("section"),
		r.sectionHeading(p, content.RevealProjectsHeading, r.Site.ProjectsSection()),
		r.Projects(p),
	)
}

// Projects is the project selector panel and the active project's details.
func (r Renderer) Projects(p *session.Page) g.Node {
	active, _ := r.Site.Project(p.Projects.Active())

	return Div(ID("projects-panel"),
		Div(Class("selector"),
			g.Map(r.Site.Projects(), func(project content.Project) g.Node {
				return Button(Type("button"),
					Class(classIf("selector-option", p.Projects.IsActive(project.ID), "active")),
					Aria("pressed", strconv.FormatBool(p.Projects.IsActive(project.ID))),
					hx("post", r.URL("ui/projects/"+project.ID)),
					hx("target", "#projects-panel"),
					hx("swap", "outerHTML"),
					g.Text(project.Title),
				)
			}),
		),
		Div(ID("project-detail"), Class("project-detail"), g.Attr("data-project", active.ID),
			Div(Class("project-info"),
				Div(Class("project-title"),
					Div(Class("card-icon "+active.Color), icon(active.Icon)),
					H3(g.Text(active.Title)),
					P(g.Text(active.Category)),
				),
				Div(Class("project-description"), g.Raw(active.DescriptionHTML)),
				H4(g.Text("Technologies Used")),
				Div(Class("tags"),
					g.Map(active.Technologies, func(tech string) g.Node {
						return Span(Class("tag"), g.Text(tech))
					}),
				),
				H4(g.Text("Key Features")),
				Ul(Class("features"),
					g.Map(active.Features, func(feature string) g.Node {
						return Li(g.Text(feature))
					}),
				),
				Dl(Class("metrics"),
					g.Map(active.Metrics, func(metric content.Metric) g.Node {
						return g.Group([]g.Node{Dt(g.Text(metric.Label)), Dd(g.Text(metric.Value))})
					}),
				),
				Div(Class("actions"),
					externalLink(active.DemoURL, Class("btn-primary"), icon("play"), g.Text("Live Demo")),
					externalLink(active.GithubURL, Class("btn-secondary"), icon("github"), g.Text("View Code")),
				),
			),
			Div(Class("project-image"),
				Img(Src(active.Image), Alt(active.Title)),
				Span(Class("badge"), g.Text("Live Project")),
			),
		),
	)
}

func (r Renderer) architectureSection(p *session.Page) g.Node {
	return Section(ID("architecture"), Class("section dark"),
		r.sectionHeading(p, content.RevealArchitectureHead, r.Site.ArchitectureSection()),
		r.Architecture(p),
		r.principlesBlock(p),
	)
}

// Architecture is the architecture tab selector and the active diagram.
func (r Renderer) Architecture(p *session.Page) g.Node {
	active, _ := r.Site.Architecture(p.Architecture.Active())

	return Div(ID("architecture-panel"),
		Div(Class("selector"),
			g.Map(r.Site.Architectures(), func(tab content.Architecture) g.Node {
				return Button(Type("button"),
					Class(classIf("selector-option", p.Architecture.IsActive(tab.ID), "active")),
					Aria("pressed", strconv.FormatBool(p.Architecture.IsActive(tab.ID))),
					hx("post", r.URL("ui/architecture/"+tab.ID)),
					hx("target", "#architecture-panel"),
					hx("swap", "outerHTML"),
					icon(tab.Icon),
					g.Text(tab.Label),
				)
			}),
		),
		Div(ID("architecture-detail"), Class("architecture-detail"), g.Attr("data-tab", active.ID),
			Div(Class("architecture-summary"),
				Span(Class("card-icon"), icon(active.Icon)),
				H3(g.Text(active.Title)),
				g.Raw(active.DescriptionHTML),
			),
			Div(Class("grid components"),
				g.Map(active.Components, func(component content.Component) g.Node {
					return Div(Class("component"),
						Div(Class("component-title"), icon(component.Icon), H4(g.Text(component.Name))),
						g.Raw(component.DescriptionHTML),
						Div(Class("tags"),
							g.Map(component.Tags(), func(tech string) g.Node {
								return Span(Class("tag"), g.Text(tech))
							}),
						),
					)
				}),
			),
		),
	)
}

func (r Renderer) principlesBlock(p *session.Page) g.Node {
	return r.reveal(p, content.RevealPrinciples,
		Div(Class("grid principles"),
			g.Map(r.Site.Principles(), func(principle content.Principle) g.Node {
				return Div(Class("principle"),
					Div(Class("card-icon"), icon(principle.Icon)),
					H4(g.Text(principle.Title)),
					g.Raw(principle.DescriptionHTML),
				)
			}),
		),
	)
}

func (r Renderer) contactSection(p *session.Page) g.Node {
	return Section(ID("contact"), Class("section"),
		r.sectionHeading(p, content.RevealContactHeading, r.Site.Contact().Section),
		Div(Class("grid contact-grid"),
			Div(Class("contact-side"),
				r.contactInfoBlock(p),
				r.calloutBlock(p),
			),
			r.contactFormBlock(p),
		),
	)
}

func (r Renderer) contactInfoBlock(p *session.Page) g.Node {
	contact := r.Site.Contact()

	return r.reveal(p, content.RevealContactInfo,
		H3(g.Text("Get In Touch")),
		P(g.Text(contact.Pitch)),
		Div(Class("channels"),
			g.Map(contact.Channels, func(channel content.Channel) g.Node {
				body := []g.Node{
					Class("channel"),
					icon(channel.Title),
					H4(g.Text(channel.Title)),
					P(g.Text(channel.Value)),
				}
				if channel.Href == "" {
					return Div(body...)
				}

				return A(append([]g.Node{Href(channel.Href)}, body...)...)
			}),
		),
		H4(g.Text("Connect With Me")),
		Div(Class("social"),
			g.Map(r.Site.Social(), func(link content.Link) g.Node {
				return externalLink(link.Href, Aria("label", link.Label), icon(link.Label))
			}),
		),
	)
}

func (r Renderer) calloutBlock(p *session.Page) g.Node {
	contact := r.Site.Contact()

	return r.reveal(p, content.RevealContactCallout,
		Div(Class("callout"),
			H4(g.Text(contact.CalloutTitle)),
			P(g.Text(contact.Callout)),
		),
	)
}

func (r Renderer) contactFormBlock(p *session.Page) g.Node {
	return r.reveal(p, content.RevealContactForm, r.ContactForm(p, ""))
}

// ContactForm renders the form. While the form shows as sent the submit button
// is disabled and the fragment re-fetches itself once the reset delay is over.
func (r Renderer) ContactForm(p *session.Page, notice string) g.Node {
	values := p.Contact.Values()
	submitted := p.Contact.Submitted()

	return Form(ID("contact-form-body"), Class("contact-form"),
		hx("post", r.URL("ui/contact")),
		hx("swap", "outerHTML"),
		Div(Class("row"),
			r.input(viewstate.FieldName, "Name", "text", values.Name, "Your name"),
			r.input(viewstate.FieldEmail, "Email", "email", values.Email, "your.email@example.com"),
		),
		r.input(viewstate.FieldSubject, "Subject", "text", values.Subject, "Senior Web Developer Position"),
		Div(Class("field"),
			Label(For(viewstate.FieldMessage), g.Text("Message")),
			Textarea(ID(viewstate.FieldMessage), Name(viewstate.FieldMessage), Required(),
				g.Attr("rows", "6"),
				Placeholder("I'm excited about the opportunity to discuss how I can contribute to your team..."),
				r.syncField(),
				g.Text(values.Message),
			),
		),
		g.If(notice != "", P(Class("form-notice"), Role("alert"), g.Text(notice))),
		Button(Type("submit"),
			Class(classIf("btn-submit", submitted, "sent")),
			g.If(p.Contact.SubmitDisabled(), Disabled()),
			g.If(submitted, g.Group([]g.Node{icon("check-circle"), Span(g.Text("Message Sent!"))})),
			g.If(!submitted, g.Group([]g.Node{icon("send"), Span(g.Text("Send Message"))})),
		),
		g.If(submitted, Div(Class("contact-reset"),
			hx("get", r.URL("ui/contact")),
			hx("trigger", fmt.Sprintf("load delay:%dms", viewstate.ResetDelay.Milliseconds())),
			hx("target", "#contact-form-body"),
			hx("swap", "outerHTML"),
		)),
	)
}

func (r Renderer) input(name string, label string, kind string, value string, placeholder string) g.Node {
	return Div(Class("field"),
		Label(For(name), g.Text(label)),
		Input(ID(name), Name(name), Type(kind), Value(value), Required(),
			Placeholder(placeholder),
			r.syncField(),
		),
	)
}

// syncField posts every keystroke so the server-side form mirrors the inputs.
func (r Renderer) syncField() g.Node {
	return g.Group([]g.Node{
		hx("post", r.URL("ui/contact/field")),
		hx("trigger", "input changed"),
		hx("swap", "none"),
	})
}

// Footer renders the site footer with its quick links.
func (r Renderer) Footer(p *session.Page) g.Node {
	profile := r.Site.Profile()
	footer := r.Site.Footer()

	return Footer(Class("site-footer"),
		Div(Class("grid footer-grid"),
			Div(Class("brand"), icon("code"), Span(g.Text(profile.Name))),
			Div(
				H3(g.Text("Quick Links")),
				Ul(
					g.Map(footer.Links, func(link content.Link) g.Node {
						return Li(A(Href(link.Href), g.Text(link.Label)))
					}),
				),
			),
		),
		Div(Class("footer-bottom"),
			r.footerCredit(p),
			r.footerTagline(p),
		),
	)
}

func (r Renderer) footerCredit(p *session.Page) g.Node {
	return r.reveal(p, content.RevealFooterCredit, P(icon("heart"), g.Text(r.Site.Footer().Credit)))
}

func (r Renderer) footerTagline(p *session.Page) g.Node {
	return r.reveal(p, content.RevealFooterTagline, P(icon("zap"), g.Text(r.Site.Footer().Tagline)))
}
