package dto

// SchoolResponse 学校响应（含院系）
type SchoolResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	ShortName   *string              `json:"short_name,omitempty"`
	Departments []DepartmentResponse `json:"departments,omitempty"`
}

// DepartmentResponse 院系响应
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Semester string `json:"semester"`
	Units    int    `json:"units"`
}

// ListCoursesRequest 课程列表查询参数
type ListCoursesRequest struct {
	DepartmentID string `form:"department_id" binding:"required,uuid"`
	Level        int    `form:"level" binding:"required,min=1,max=6"`
	Semester     string `form:"semester" binding:"required,oneof=first second"`
}
