package endpoints

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-elearn-client/models"
)

func listQuery(q models.ListQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

func list[T any](ctx context.Context, e *Executor, op Operation, params Params, q models.ListQuery) ([]T, error) {
	var out []T
	if _, err := e.Execute(ctx, Call{Op: op, Params: params, Query: listQuery(q)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func one[T any](ctx context.Context, e *Executor, op Operation, params Params, body any) (*T, error) {
	out := new(T)
	if _, err := e.Execute(ctx, Call{Op: op, Params: params, Body: body}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func none(ctx context.Context, e *Executor, op Operation, params Params, body any) error {
	_, err := e.Execute(ctx, Call{Op: op, Params: params, Body: body}, nil)
	return err
}

func byID(id string) Params {
	return Params{"id": id}
}

type Courses struct{ e *Executor }

func (e *Executor) Courses() Courses { return Courses{e} }

func (c Courses) List(ctx context.Context, q models.ListQuery) ([]models.Course, error) {
	return list[models.Course](ctx, c.e, OpCourseList, nil, q)
}

func (c Courses) Get(ctx context.Context, id string) (*models.Course, error) {
	return one[models.Course](ctx, c.e, OpCourseGet, byID(id), nil)
}

func (c Courses) Add(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	return one[models.Course](ctx, c.e, OpCourseAdd, nil, req)
}

func (c Courses) Update(ctx context.Context, id string, req models.CourseRequest) (*models.Course, error) {
	return one[models.Course](ctx, c.e, OpCourseUpdate, byID(id), req)
}

func (c Courses) Delete(ctx context.Context, id string) error {
	return none(ctx, c.e, OpCourseDelete, byID(id), nil)
}

func (c Courses) Publish(ctx context.Context, id string, published bool) (*models.Course, error) {
	return one[models.Course](ctx, c.e, OpCoursePublish, byID(id), models.PublishRequest{Published: published})
}

type Modules struct{ e *Executor }

func (e *Executor) Modules() Modules { return Modules{e} }

func (m Modules) List(ctx context.Context, courseID string) ([]models.Module, error) {
	return list[models.Module](ctx, m.e, OpModuleList, Params{"courseId": courseID}, models.ListQuery{})
}

func (m Modules) Get(ctx context.Context, id string) (*models.Module, error) {
	return one[models.Module](ctx, m.e, OpModuleGet, byID(id), nil)
}

func (m Modules) Add(ctx context.Context, req models.ModuleRequest) (*models.Module, error) {
	return one[models.Module](ctx, m.e, OpModuleAdd, nil, req)
}

func (m Modules) Update(ctx context.Context, id string, req models.ModuleRequest) (*models.Module, error) {
	return one[models.Module](ctx, m.e, OpModuleUpdate, byID(id), req)
}

func (m Modules) Delete(ctx context.Context, id string) error {
	return none(ctx, m.e, OpModuleDelete, byID(id), nil)
}

type Quizzes struct{ e *Executor }

func (e *Executor) Quizzes() Quizzes { return Quizzes{e} }

func (q Quizzes) List(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	return list[models.Quiz](ctx, q.e, OpQuizList, Params{"moduleId": moduleID}, models.ListQuery{})
}

func (q Quizzes) Get(ctx context.Context, id string) (*models.Quiz, error) {
	return one[models.Quiz](ctx, q.e, OpQuizGet, byID(id), nil)
}

func (q Quizzes) Add(ctx context.Context, req models.QuizRequest) (*models.Quiz, error) {
	return one[models.Quiz](ctx, q.e, OpQuizAdd, nil, req)
}

func (q Quizzes) Update(ctx context.Context, id string, req models.QuizRequest) (*models.Quiz, error) {
	return one[models.Quiz](ctx, q.e, OpQuizUpdate, byID(id), req)
}

func (q Quizzes) Delete(ctx context.Context, id string) error {
	return none(ctx, q.e, OpQuizDelete, byID(id), nil)
}

func (q Quizzes) Submit(ctx context.Context, id string, answers []int) (*models.QuizResult, error) {
	return one[models.QuizResult](ctx, q.e, OpQuizSubmit, byID(id), models.QuizSubmission{Answers: answers})
}

type Blogs struct{ e *Executor }

func (e *Executor) Blogs() Blogs { return Blogs{e} }

func (b Blogs) List(ctx context.Context, q models.ListQuery) ([]models.Blog, error) {
	return list[models.Blog](ctx, b.e, OpBlogList, nil, q)
}

func (b Blogs) Get(ctx context.Context, id string) (*models.Blog, error) {
	return one[models.Blog](ctx, b.e, OpBlogGet, byID(id), nil)
}

func (b Blogs) Add(ctx context.Context, req models.BlogRequest) (*models.Blog, error) {
	return one[models.Blog](ctx, b.e, OpBlogAdd, nil, req)
}

func (b Blogs) Update(ctx context.Context, id string, req models.BlogRequest) (*models.Blog, error) {
	return one[models.Blog](ctx, b.e, OpBlogUpdate, byID(id), req)
}

func (b Blogs) Delete(ctx context.Context, id string) error {
	return none(ctx, b.e, OpBlogDelete, byID(id), nil)
}

type Events struct{ e *Executor }

func (e *Executor) Events() Events { return Events{e} }

func (ev Events) List(ctx context.Context, q models.ListQuery) ([]models.Event, error) {
	return list[models.Event](ctx, ev.e, OpEventList, nil, q)
}

func (ev Events) Get(ctx context.Context, id string) (*models.Event, error) {
	return one[models.Event](ctx, ev.e, OpEventGet, byID(id), nil)
}

func (ev Events) Add(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	return one[models.Event](ctx, ev.e, OpEventAdd, nil, req)
}

func (ev Events) Update(ctx context.Context, id string, req models.EventRequest) (*models.Event, error) {
	return one[models.Event](ctx, ev.e, OpEventUpdate, byID(id), req)
}

func (ev Events) Delete(ctx context.Context, id string) error {
	return none(ctx, ev.e, OpEventDelete, byID(id), nil)
}

type Instructors struct{ e *Executor }

func (e *Executor) Instructors() Instructors { return Instructors{e} }

func (i Instructors) List(ctx context.Context, q models.ListQuery) ([]models.Instructor, error) {
	return list[models.Instructor](ctx, i.e, OpInstructorList, nil, q)
}

func (i Instructors) Get(ctx context.Context, id string) (*models.Instructor, error) {
	return one[models.Instructor](ctx, i.e, OpInstructorGet, byID(id), nil)
}

func (i Instructors) Add(ctx context.Context, req models.InstructorRequest) (*models.Instructor, error) {
	return one[models.Instructor](ctx, i.e, OpInstructorAdd, nil, req)
}

func (i Instructors) Update(ctx context.Context, id string, req models.InstructorRequest) (*models.Instructor, error) {
	return one[models.Instructor](ctx, i.e, OpInstructorUpdate, byID(id), req)
}

func (i Instructors) Delete(ctx context.Context, id string) error {
	return none(ctx, i.e, OpInstructorDelete, byID(id), nil)
}

type Reviews struct{ e *Executor }

func (e *Executor) Reviews() Reviews { return Reviews{e} }

func (r Reviews) List(ctx context.Context, courseID string) ([]models.Review, error) {
	return list[models.Review](ctx, r.e, OpReviewList, Params{"courseId": courseID}, models.ListQuery{})
}

func (r Reviews) Add(ctx context.Context, req models.ReviewRequest) (*models.Review, error) {
	return one[models.Review](ctx, r.e, OpReviewAdd, nil, req)
}

func (r Reviews) Delete(ctx context.Context, id string) error {
	return none(ctx, r.e, OpReviewDelete, byID(id), nil)
}

type Users struct{ e *Executor }

func (e *Executor) Users() Users { return Users{e} }

func (u Users) List(ctx context.Context, q models.ListQuery) ([]models.User, error) {
	return list[models.User](ctx, u.e, OpUserList, nil, q)
}

func (u Users) Get(ctx context.Context, id string) (*models.User, error) {
	return one[models.User](ctx, u.e, OpUserGet, byID(id), nil)
}

func (u Users) Block(ctx context.Context, id string) error {
	return none(ctx, u.e, OpUserBlock, byID(id), nil)
}

func (u Users) Unblock(ctx context.Context, id string) error {
	return none(ctx, u.e, OpUserUnblock, byID(id), nil)
}

func (u Users) EnrolledCourses(ctx context.Context) ([]models.Course, error) {
	return list[models.Course](ctx, u.e, OpEnrolledCourses, nil, models.ListQuery{})
}

func (u Users) Enroll(ctx context.Context, courseID string) error {
	return none(ctx, u.e, OpEnroll, Params{"courseId": courseID}, nil)
}

func (u Users) Profile(ctx context.Context) (*models.User, error) {
	return one[models.User](ctx, u.e, OpProfile, nil, nil)
}

func (u Users) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	return one[models.User](ctx, u.e, OpUpdateProfile, nil, req)
}

type Admins struct{ e *Executor }

func (e *Executor) Admins() Admins { return Admins{e} }

func (a Admins) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	return one[models.DashboardStats](ctx, a.e, OpDashboard, nil, nil)
}

func (a Admins) List(ctx context.Context) ([]models.Admin, error) {
	return list[models.Admin](ctx, a.e, OpAdminList, nil, models.ListQuery{})
}

func (a Admins) Add(ctx context.Context, req models.AddAdminRequest) (*models.Admin, error) {
	return one[models.Admin](ctx, a.e, OpAdminAdd, nil, req)
}
