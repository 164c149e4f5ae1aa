// Package views renders the quiz page and its htmx fragments as templ components.
package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/trainer/internal/i18n"
	"github.com/pavelanni/trainer/internal/model"
)

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if hw.err != nil {
			return
		}
		_, hw.err = io.WriteString(hw.w, p)
	}
}

// text writes s escaped for element content or a quoted attribute value.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) url(s string) {
	hw.text(string(templ.URL(s)))
}

func (hw *htmlWriter) render(ctx context.Context, c templ.Component) {
	if hw.err == nil {
		hw.err = c.Render(ctx, hw.w)
	}
}

func component(fn func(ctx context.Context, hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		fn(ctx, hw)
		return hw.err
	})
}

func icon(name string) string {
	return `<span class="icon" data-icon="` + templ.EscapeString(name) + `"></span>`
}

func oobAttr(oob bool) string {
	if oob {
		return ` hx-swap-oob="true"`
	}
	return ""
}

func csrfField() templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<input type="hidden" name="csrf_token" value="`)
		hw.text(model.CSRFTokenFromContext(ctx))
		hw.raw(`">`)
	})
}

// QuizPage renders the full page: nav badge, progress card, the tab strip
// and the panel of the selected tab.
func QuizPage(page model.PageView) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		tab := model.ParseTab(string(page.Tab))

		hw.raw(`<!DOCTYPE html><html lang="`)
		hw.text(appI18n.Lang())
		hw.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.text(appI18n.T(ctx, "AppTitle"))
		hw.raw(`</title>
<script src="https://cdn.tailwindcss.com"></script>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
</head>
<body class="min-h-screen bg-gradient-to-br from-blue-50 to-green-50">`)
		hw.render(ctx, navBar(page.Progress))
		hw.render(ctx, hero(page.Progress))
		hw.raw(`<main class="container mx-auto px-6 pb-16">`)
		hw.render(ctx, tabStrip(tab))
		if tab == model.TabSubjects {
			hw.render(ctx, subjectsPanel(page.Subjects))
		} else {
			hw.render(ctx, tasksPanel(page.Tasks))
		}
		hw.raw(`</main>`)
		hw.render(ctx, footer(page.Subjects))
		hw.raw(`</body></html>`)
	})
}

func navBar(p model.Progress) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<nav class="bg-white/80 border-b border-blue-100 sticky top-0 z-50">`,
			`<div class="container mx-auto px-6 py-4 flex items-center justify-between">`,
			`<h1 class="text-xl font-bold text-gray-900">`, icon("GraduationCap"), ` `)
		hw.text(appI18n.T(ctx, "AppTitle"))
		hw.raw(`</h1><div class="flex items-center space-x-4">`)
		hw.render(ctx, progressBadge(p, false))
		hw.raw(`<form method="post" action="`)
		hw.url(model.BasePathFromContext(ctx) + "/reset")
		hw.raw(`">`)
		hw.render(ctx, csrfField())
		hw.raw(`<button type="submit" class="border rounded px-3 py-1 text-sm">`)
		hw.text(appI18n.T(ctx, "StartOver"))
		hw.raw(`</button></form></div></div></nav>`)
	})
}

func hero(p model.Progress) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<section class="py-16 px-6 text-center"><h1 class="text-5xl font-bold text-gray-900 mb-6">`)
		hw.text(appI18n.T(ctx, "HeroTitle"))
		hw.raw(`<span class="block mt-2">`)
		hw.text(appI18n.T(ctx, "HeroTitleAccent"))
		hw.raw(`</span></h1><p class="text-xl text-gray-600 mb-8 max-w-2xl mx-auto">`)
		hw.text(appI18n.T(ctx, "HeroSubtitle"))
		hw.raw(`</p><a class="inline-block gradient-bg text-white rounded-lg px-6 py-3 mb-8" href="`)
		hw.url(tabURL(ctx, model.TabTasks))
		hw.raw(`">`)
		hw.text(appI18n.T(ctx, "StartLearning"))
		hw.raw(`</a>`)
		hw.render(ctx, progressCard(p, false))
		hw.raw(`</section>`)
	})
}

func tabURL(ctx context.Context, tab model.Tab) string {
	return model.BasePathFromContext(ctx) + "/?tab=" + string(tab) + "#tabs"
}

func tabStrip(active model.Tab) templ.Component {
	tabs := []struct {
		tab   model.Tab
		label string
	}{
		{model.TabTasks, "TasksTab"},
		{model.TabSubjects, "SubjectsTab"},
	}
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<nav id="tabs" class="flex justify-center gap-2 mb-8" role="tablist">`)
		for _, t := range tabs {
			class, selected := "text-gray-600 hover:bg-white", "false"
			if t.tab == active {
				class, selected = "bg-white shadow font-semibold text-gray-900", "true"
			}
			hw.raw(`<a role="tab" aria-selected="`, selected, `" class="px-4 py-2 rounded-lg `, class, `" href="`)
			hw.url(tabURL(ctx, t.tab))
			hw.raw(`">`)
			hw.text(appI18n.T(ctx, t.label))
			hw.raw(`</a>`)
		}
		hw.raw(`</nav>`)
	})
}

func panelHeading(ctx context.Context, hw *htmlWriter, heading, subheading string) {
	hw.raw(`<div class="text-center mb-8"><h2 class="text-3xl font-bold text-gray-900 mb-4">`)
	hw.text(appI18n.T(ctx, heading))
	hw.raw(`</h2><p class="text-gray-600">`)
	hw.text(appI18n.T(ctx, subheading))
	hw.raw(`</p></div>`)
}

func tasksPanel(tasks []model.TaskView) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<section id="tasks" role="tabpanel" class="space-y-8">`)
		panelHeading(ctx, hw, "TasksHeading", "TasksSubheading")
		hw.raw(`<div class="grid gap-6 max-w-4xl mx-auto">`)
		for _, t := range tasks {
			hw.render(ctx, TaskCard(t))
		}
		hw.raw(`</div></section>`)
	})
}

func subjectsPanel(subjects []model.Subject) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<section id="subjects" role="tabpanel" class="space-y-8">`)
		panelHeading(ctx, hw, "SubjectsHeading", "SubjectsSubheading")
		hw.raw(`<div class="grid md:grid-cols-2 lg:grid-cols-3 gap-6">`)
		for _, s := range subjects {
			hw.render(ctx, subjectCard(s))
		}
		hw.raw(`</div></section>`)
	})
}

func subjectCard(s model.Subject) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<article class="subject rounded-xl bg-white overflow-hidden"><div class="relative h-48 overflow-hidden">`)
		if s.Image != "" {
			hw.raw(`<img src="`)
			hw.url(s.Image)
			hw.raw(`" alt="`)
			hw.text(s.Name)
			hw.raw(`" class="w-full h-full object-cover">`)
		}
		hw.raw(`<div class="absolute top-4 left-4 w-12 h-12 rounded-xl `)
		hw.text(s.Color)
		hw.raw(`">`, icon(s.Icon), `</div></div>`)
		hw.raw(`<header class="p-4 flex items-center justify-between"><h3 class="text-xl">`)
		hw.text(s.Name)
		hw.raw(`</h3><span class="badge">`, strconv.Itoa(s.TaskCount), `</span></header><p class="px-4 text-gray-600">`)
		hw.text(s.Description)
		hw.raw(`</p><div class="p-4"><a class="block text-center border rounded-lg py-2" href="`)
		hw.url(tabURL(ctx, model.TabTasks))
		hw.raw(`">`)
		hw.text(appI18n.T(ctx, "SubjectTasks"))
		hw.raw(`</a></div></article>`)
	})
}

func footer(subjects []model.Subject) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<footer class="bg-gray-900 text-white py-12"><div class="container mx-auto px-6 grid md:grid-cols-2 gap-8">`,
			`<div><h3 class="text-xl font-bold mb-4">`)
		hw.text(appI18n.T(ctx, "AppTitle"))
		hw.raw(`</h3><p class="text-gray-400">`)
		hw.text(appI18n.T(ctx, "FooterTagline"))
		hw.raw(`</p></div>`)
		if len(subjects) > 0 {
			hw.raw(`<div><h4 class="font-semibold mb-4">`)
			hw.text(appI18n.T(ctx, "SubjectsTab"))
			hw.raw(`</h4><ul class="space-y-2 text-gray-400">`)
			for _, s := range subjects {
				hw.raw(`<li>`)
				hw.text(s.Name)
				hw.raw(`</li>`)
			}
			hw.raw(`</ul></div>`)
		}
		hw.raw(`</div></footer>`)
	})
}

// TaskCard renders one task form, including its explanation once checked.
func TaskCard(task model.TaskView) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		q := task.Question
		id := strconv.FormatInt(q.ID, 10)
		taskPath := model.BasePathFromContext(ctx) + "/tasks/" + id

		hw.raw(`<form id="task-`, id, `" class="task rounded-xl bg-white border-2 p-6 space-y-4 result-`, task.Result.String(),
			`" method="post" action="`)
		hw.url(taskPath + "/check")
		hw.raw(`" hx-post="`)
		hw.url(taskPath + "/check")
		hw.raw(`" hx-target="this" hx-swap="outerHTML">`)
		hw.render(ctx, csrfField())

		hw.raw(`<div class="flex items-center justify-between"><span class="badge subject">`)
		hw.text(q.Subject)
		hw.raw(`</span><span class="badge topic text-xs">`)
		hw.text(q.Topic)
		hw.raw(`</span></div><h3 class="text-left text-lg font-semibold">`)
		hw.text(q.Prompt)
		hw.raw(`</h3>`)

		hw.raw(`<div class="flex gap-3"><input type="text" name="answer" value="`)
		hw.text(task.Answer)
		hw.raw(`" placeholder="`)
		hw.text(appI18n.T(ctx, "AnswerPlaceholder"))
		hw.raw(`" class="flex-1 border rounded px-3 py-2 `, inputClass(task.Result), `" hx-post="`)
		hw.url(taskPath + "/answer")
		hw.raw(`" hx-trigger="input changed delay:200ms" hx-target="#check-`, id, `" hx-swap="outerHTML">`)
		hw.render(ctx, CheckButton(task))
		hw.raw(`</div>`)

		if task.ExplanationVisible {
			hw.render(ctx, explanationPanel(task))
		}
		hw.raw(`</form>`)
	})
}

func explanationPanel(task model.TaskView) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		verdict, panel := "VerdictIncorrect", "bg-red-50 border border-red-200 text-red-800"
		if task.Result == model.Correct {
			verdict, panel = "VerdictCorrect", "bg-green-50 border border-green-200 text-green-800"
		}
		hw.raw(`<div class="explanation p-4 rounded-lg `, panel, `"><p class="verdict font-medium mb-2">`)
		hw.text(appI18n.T(ctx, verdict))
		hw.raw(`</p><p class="text-sm text-gray-700"><strong>`)
		hw.text(appI18n.T(ctx, "CorrectAnswer"))
		hw.raw(`</strong> `)
		hw.text(task.Question.Answer)
		hw.raw(`</p>`)
		if task.Question.Explanation != "" {
			hw.raw(`<p class="text-sm text-gray-600 mt-1">`)
			hw.text(task.Question.Explanation)
			hw.raw(`</p>`)
		}
		hw.raw(`</div>`)
	})
}

// CheckButton renders a task's check button alone, for live updates while typing.
func CheckButton(task model.TaskView) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<button id="check-`, strconv.FormatInt(task.Question.ID, 10), `" type="submit" title="`)
		hw.text(appI18n.T(ctx, "Check"))
		hw.raw(`" class="rounded px-4 py-2 text-white `, buttonClass(task.Result), `"`)
		if !task.CanCheck {
			hw.raw(` disabled`)
		}
		hw.raw(`>`, icon(buttonIcon(task.Result)), `</button>`)
	})
}

func inputClass(r model.Result) string {
	switch r {
	case model.Correct:
		return "border-green-500 bg-green-50"
	case model.Incorrect:
		return "border-red-500 bg-red-50"
	}
	return ""
}

func buttonClass(r model.Result) string {
	switch r {
	case model.Correct:
		return "bg-green-600 hover:bg-green-700"
	case model.Incorrect:
		return "bg-red-600 hover:bg-red-700"
	}
	return "gradient-bg hover:opacity-90"
}

func buttonIcon(r model.Result) string {
	switch r {
	case model.Correct:
		return "Check"
	case model.Incorrect:
		return "X"
	}
	return "ArrowRight"
}

// ProgressFragment renders the nav badge and the progress card. With oob set
// both carry hx-swap-oob so they can ride along with another fragment.
func ProgressFragment(progress model.Progress, oob bool) templ.Component {
	return templ.Join(progressBadge(progress, oob), progressCard(progress, oob))
}

func progressBadge(p model.Progress, oob bool) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<span id="progress-badge" class="badge bg-green-100 text-green-800"`, oobAttr(oob), `>`)
		hw.text(appI18n.Td(ctx, "ProgressBadge", map[string]any{"Percent": p.Percent}))
		hw.raw(`</span>`)
	})
}

func progressCard(p model.Progress, oob bool) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<div id="progress-card" class="max-w-md mx-auto rounded-xl bg-white p-6"`, oobAttr(oob), `><h2 class="text-lg mb-3">`)
		hw.text(appI18n.T(ctx, "TodayProgress"))
		hw.raw(`</h2><progress class="w-full h-3" max="100" value="`, strconv.Itoa(p.Percent), `"></progress><p class="text-sm text-gray-600">`)
		hw.text(appI18n.Tp(ctx, "SolvedOf", p.Total, map[string]any{"Solved": p.Solved}))
		hw.raw(`</p></div>`)
	})
}
