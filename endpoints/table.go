package endpoints

import "net/http"

// Operation names one logical API call
type Operation string

// Tag labels a class of cached data
type Tag string

const (
	TagProfile    Tag = "Profile"
	TagCourse     Tag = "Course"
	TagModule     Tag = "Module"
	TagQuiz       Tag = "Quiz"
	TagBlog       Tag = "Blog"
	TagEvent      Tag = "Event"
	TagInstructor Tag = "Instructor"
	TagReview     Tag = "Review"
	TagUser       Tag = "User"
	TagEnrollment Tag = "Enrollment"
	TagAdmin      Tag = "Admin"
	TagDashboard  Tag = "Dashboard"
)

// Spec maps an operation to its HTTP shape. Path params are written {name}.
// Reads with a Tag are cached; successful calls drop every Invalidates tag.
type Spec struct {
	Method      string
	Path        string
	Tag         Tag
	Invalidates []Tag
}

func (s Spec) cacheable() bool {
	return s.Method == http.MethodGet && s.Tag != ""
}

const (
	// auth
	OpSignup         Operation = "auth.signup"
	OpLogin          Operation = "auth.login"
	OpVerifyEmail    Operation = "auth.verifyEmail"
	OpResendOTP      Operation = "auth.resendOtp"
	OpForgotPassword Operation = "auth.forgotPassword"
	OpResetPassword  Operation = "auth.resetPassword"
	OpLogout         Operation = "auth.logout"
	OpProfile        Operation = "auth.profile"
	OpUpdateProfile  Operation = "auth.updateProfile"
	OpAdminLogin     Operation = "auth.adminLogin"
	OpAdminVerifyOTP Operation = "auth.adminVerifyOtp"
	OpAdminLogout    Operation = "auth.adminLogout"

	// course
	OpCourseList    Operation = "course.list"
	OpCourseGet     Operation = "course.get"
	OpCourseAdd     Operation = "course.add"
	OpCourseUpdate  Operation = "course.update"
	OpCourseDelete  Operation = "course.delete"
	OpCoursePublish Operation = "course.publish"

	// module
	OpModuleList   Operation = "module.list"
	OpModuleGet    Operation = "module.get"
	OpModuleAdd    Operation = "module.add"
	OpModuleUpdate Operation = "module.update"
	OpModuleDelete Operation = "module.delete"

	// quiz
	OpQuizList   Operation = "quiz.list"
	OpQuizGet    Operation = "quiz.get"
	OpQuizAdd    Operation = "quiz.add"
	OpQuizUpdate Operation = "quiz.update"
	OpQuizDelete Operation = "quiz.delete"
	OpQuizSubmit Operation = "quiz.submit"

	// blog
	OpBlogList   Operation = "blog.list"
	OpBlogGet    Operation = "blog.get"
	OpBlogAdd    Operation = "blog.add"
	OpBlogUpdate Operation = "blog.update"
	OpBlogDelete Operation = "blog.delete"

	// event
	OpEventList   Operation = "event.list"
	OpEventGet    Operation = "event.get"
	OpEventAdd    Operation = "event.add"
	OpEventUpdate Operation = "event.update"
	OpEventDelete Operation = "event.delete"

	// instructor
	OpInstructorList   Operation = "instructor.list"
	OpInstructorGet    Operation = "instructor.get"
	OpInstructorAdd    Operation = "instructor.add"
	OpInstructorUpdate Operation = "instructor.update"
	OpInstructorDelete Operation = "instructor.delete"

	// review
	OpReviewList   Operation = "review.list"
	OpReviewAdd    Operation = "review.add"
	OpReviewDelete Operation = "review.delete"

	// user
	OpUserList        Operation = "user.list"
	OpUserGet         Operation = "user.get"
	OpUserBlock       Operation = "user.block"
	OpUserUnblock     Operation = "user.unblock"
	OpEnrolledCourses Operation = "user.enrolledCourses"
	OpEnroll          Operation = "user.enroll"

	// admin
	OpDashboard Operation = "admin.dashboard"
	OpAdminList Operation = "admin.list"
	OpAdminAdd  Operation = "admin.add"
)

// Table is the default operation table for the platform API
var Table = map[Operation]Spec{
	OpSignup:         {Method: http.MethodPost, Path: "/user/signup"},
	OpLogin:          {Method: http.MethodPost, Path: "/user/login"},
	OpVerifyEmail:    {Method: http.MethodPost, Path: "/user/verify-email"},
	OpResendOTP:      {Method: http.MethodPost, Path: "/user/resend-otp"},
	OpForgotPassword: {Method: http.MethodPost, Path: "/user/forgot-password"},
	OpResetPassword:  {Method: http.MethodPost, Path: "/user/reset-password"},
	OpLogout:         {Method: http.MethodPost, Path: "/user/logout"},
	OpProfile:        {Method: http.MethodGet, Path: "/user/profile", Tag: TagProfile},
	OpUpdateProfile:  {Method: http.MethodPut, Path: "/user/profile", Invalidates: []Tag{TagProfile}},
	OpAdminLogin:     {Method: http.MethodPost, Path: "/admin/login"},
	OpAdminVerifyOTP: {Method: http.MethodPost, Path: "/admin/verify-otp"},
	OpAdminLogout:    {Method: http.MethodPost, Path: "/admin/logout"},

	OpCourseList:    {Method: http.MethodGet, Path: "/course", Tag: TagCourse},
	OpCourseGet:     {Method: http.MethodGet, Path: "/course/{id}", Tag: TagCourse},
	OpCourseAdd:     {Method: http.MethodPost, Path: "/admin/course", Invalidates: []Tag{TagCourse, TagDashboard}},
	OpCourseUpdate:  {Method: http.MethodPut, Path: "/admin/course/{id}", Invalidates: []Tag{TagCourse}},
	OpCourseDelete:  {Method: http.MethodDelete, Path: "/admin/course/{id}", Invalidates: []Tag{TagCourse, TagModule, TagEnrollment, TagDashboard}},
	OpCoursePublish: {Method: http.MethodPatch, Path: "/admin/course/{id}/publish", Invalidates: []Tag{TagCourse}},

	OpModuleList:   {Method: http.MethodGet, Path: "/course/{courseId}/modules", Tag: TagModule},
	OpModuleGet:    {Method: http.MethodGet, Path: "/module/{id}", Tag: TagModule},
	OpModuleAdd:    {Method: http.MethodPost, Path: "/admin/module", Invalidates: []Tag{TagModule, TagCourse}},
	OpModuleUpdate: {Method: http.MethodPut, Path: "/admin/module/{id}", Invalidates: []Tag{TagModule}},
	OpModuleDelete: {Method: http.MethodDelete, Path: "/admin/module/{id}", Invalidates: []Tag{TagModule, TagCourse, TagQuiz}},

	OpQuizList:   {Method: http.MethodGet, Path: "/module/{moduleId}/quizzes", Tag: TagQuiz},
	OpQuizGet:    {Method: http.MethodGet, Path: "/quiz/{id}", Tag: TagQuiz},
	OpQuizAdd:    {Method: http.MethodPost, Path: "/admin/quiz", Invalidates: []Tag{TagQuiz}},
	OpQuizUpdate: {Method: http.MethodPut, Path: "/admin/quiz/{id}", Invalidates: []Tag{TagQuiz}},
	OpQuizDelete: {Method: http.MethodDelete, Path: "/admin/quiz/{id}", Invalidates: []Tag{TagQuiz}},
	OpQuizSubmit: {Method: http.MethodPost, Path: "/quiz/{id}/submit", Invalidates: []Tag{TagEnrollment}},

	OpBlogList:   {Method: http.MethodGet, Path: "/blog", Tag: TagBlog},
	OpBlogGet:    {Method: http.MethodGet, Path: "/blog/{id}", Tag: TagBlog},
	OpBlogAdd:    {Method: http.MethodPost, Path: "/admin/blog", Invalidates: []Tag{TagBlog, TagDashboard}},
	OpBlogUpdate: {Method: http.MethodPut, Path: "/admin/blog/{id}", Invalidates: []Tag{TagBlog}},
	OpBlogDelete: {Method: http.MethodDelete, Path: "/admin/blog/{id}", Invalidates: []Tag{TagBlog, TagDashboard}},

	OpEventList:   {Method: http.MethodGet, Path: "/event", Tag: TagEvent},
	OpEventGet:    {Method: http.MethodGet, Path: "/event/{id}", Tag: TagEvent},
	OpEventAdd:    {Method: http.MethodPost, Path: "/admin/event", Invalidates: []Tag{TagEvent, TagDashboard}},
	OpEventUpdate: {Method: http.MethodPut, Path: "/admin/event/{id}", Invalidates: []Tag{TagEvent}},
	OpEventDelete: {Method: http.MethodDelete, Path: "/admin/event/{id}", Invalidates: []Tag{TagEvent, TagDashboard}},

	OpInstructorList:   {Method: http.MethodGet, Path: "/instructor", Tag: TagInstructor},
	OpInstructorGet:    {Method: http.MethodGet, Path: "/instructor/{id}", Tag: TagInstructor},
	OpInstructorAdd:    {Method: http.MethodPost, Path: "/admin/instructor", Invalidates: []Tag{TagInstructor}},
	OpInstructorUpdate: {Method: http.MethodPut, Path: "/admin/instructor/{id}", Invalidates: []Tag{TagInstructor, TagCourse}},
	OpInstructorDelete: {Method: http.MethodDelete, Path: "/admin/instructor/{id}", Invalidates: []Tag{TagInstructor, TagCourse}},

	OpReviewList:   {Method: http.MethodGet, Path: "/course/{courseId}/reviews", Tag: TagReview},
	OpReviewAdd:    {Method: http.MethodPost, Path: "/review", Invalidates: []Tag{TagReview, TagCourse}},
	OpReviewDelete: {Method: http.MethodDelete, Path: "/admin/review/{id}", Invalidates: []Tag{TagReview, TagCourse}},

	OpUserList:        {Method: http.MethodGet, Path: "/admin/users", Tag: TagUser},
	OpUserGet:         {Method: http.MethodGet, Path: "/admin/users/{id}", Tag: TagUser},
	OpUserBlock:       {Method: http.MethodPatch, Path: "/admin/users/{id}/block", Invalidates: []Tag{TagUser}},
	OpUserUnblock:     {Method: http.MethodPatch, Path: "/admin/users/{id}/unblock", Invalidates: []Tag{TagUser}},
	OpEnrolledCourses: {Method: http.MethodGet, Path: "/user/courses", Tag: TagEnrollment},
	OpEnroll:          {Method: http.MethodPost, Path: "/user/enroll/{courseId}", Invalidates: []Tag{TagEnrollment, TagCourse, TagDashboard}},

	OpDashboard: {Method: http.MethodGet, Path: "/admin/dashboard", Tag: TagDashboard},
	OpAdminList: {Method: http.MethodGet, Path: "/admin/admins", Tag: TagAdmin},
	OpAdminAdd:  {Method: http.MethodPost, Path: "/admin/admins", Invalidates: []Tag{TagAdmin}},
}
