package regression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	apperrors "stickycost/internal/errors"
)

var (
	// ErrRankDeficient is wrapped when the design lacks full column rank.
	ErrRankDeficient = errors.New("design matrix is rank deficient")
	// ErrTooFewObservations is wrapped when there are no more rows than parameters.
	ErrTooFewObservations = errors.New("too few observations")
	// ErrTooFewClusters is wrapped when fewer than two firms are in the sample.
	ErrTooFewClusters = errors.New("too few clusters")
	// ErrNonFinite is wrapped when a design column holds NaN or Inf.
	ErrNonFinite = errors.New("non-finite value in design")
)

// rankTolerance is the singular value cutoff relative to the largest one.
const rankTolerance = 1e-10

// Coefficient is one estimated parameter.
type Coefficient struct {
	Name     string
	Estimate float64
	StdErr   float64
	Z        float64
	PValue   float64
}

// Result summarises a fit.
type Result struct {
	Intercept    Coefficient
	Coefficients []Coefficient // regressors in request order
	RSquared     float64
	Observations int
	Clusters     int

	YearFixedEffects     bool
	IndustryFixedEffects bool
	YearDummies          []string
	IndustryDummies      []string
}

// Coefficient returns the estimate for a regressor or the intercept.
func (r *Result) Coefficient(name string) (Coefficient, bool) {
	if name == InterceptName {
		return r.Intercept, true
	}
	for _, c := range r.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Engine fits regressions.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns an engine. A nil logger uses the default logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "regression"))}
}

// Fit estimates req on data by OLS with a cluster-robust covariance,
// clustering on entity. P-values are two-sided from the standard normal.
func (e *Engine) Fit(ctx context.Context, data Data, req Request) (*Result, error) {
	d, err := BuildDesign(data, req)
	if err != nil {
		return nil, err
	}

	est, err := estimate(d)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RSquared:             est.rsquared,
		Observations:         d.X.RawMatrix().Rows,
		Clusters:             d.NGroups,
		YearFixedEffects:     req.YearFixedEffects,
		IndustryFixedEffects: req.IndustryFixedEffects,
		YearDummies:          d.YearDummies,
		IndustryDummies:      d.IndustryDummies,
	}
	// Design column 0 is the intercept, 1..len(Regressors) the regressors.
	res.Intercept = est.coefficient(d.Names, 0)
	for j := range req.Regressors {
		res.Coefficients = append(res.Coefficients, est.coefficient(d.Names, j+1))
	}

	e.logger.InfoContext(ctx, "Fitted model",
		slog.String("dependent", req.Dependent),
		slog.Int("observations", res.Observations),
		slog.Int("clusters", res.Clusters),
		slog.Int("parameters", len(d.Names)),
		slog.Float64("r_squared", res.RSquared),
	)
	return res, nil
}

type estimation struct {
	beta     *mat.VecDense
	se       []float64
	rsquared float64
}

func (est *estimation) coefficient(names []string, j int) Coefficient {
	b := est.beta.AtVec(j)
	se := est.se[j]
	z := b / se
	p := math.NaN()
	if !math.IsNaN(z) {
		p = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	}
	return Coefficient{Name: names[j], Estimate: b, StdErr: se, Z: z, PValue: p}
}

// estimate computes beta = (X'X)^-1 X'y and the clustered sandwich
//
//	V = c (X'X)^-1 (sum_g X_g' u_g u_g' X_g) (X'X)^-1
//	c = G/(G-1) * (N-1)/(N-K)
func estimate(d *Design) (*estimation, error) {
	n, k := d.X.Dims()
	if n <= k {
		return nil, apperrors.NewStatisticalError(
			fmt.Sprintf("%d observations for %d parameters", n, k), ErrTooFewObservations,
		)
	}
	if d.NGroups < 2 {
		return nil, apperrors.NewStatisticalError(
			fmt.Sprintf("%d clusters", d.NGroups), ErrTooFewClusters,
		)
	}

	if rank := matrixRank(d.X); rank < k {
		return nil, apperrors.NewStatisticalError(
			fmt.Sprintf("design has rank %d but %d columns", rank, k), ErrRankDeficient,
		).WithContext("columns", d.Names)
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, d.X.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, apperrors.NewStatisticalError("X'X is not positive definite", ErrRankDeficient)
	}
	var bread mat.SymDense
	if err := chol.InverseTo(&bread); err != nil {
		return nil, apperrors.NewStatisticalError("failed to invert X'X", errors.Join(ErrRankDeficient, err))
	}

	var xty mat.VecDense
	xty.MulVec(d.X.T(), d.Y)
	beta := mat.NewVecDense(k, nil)
	beta.MulVec(&bread, &xty)

	var fitted, resid mat.VecDense
	fitted.MulVec(d.X, beta)
	resid.SubVec(d.Y, &fitted)

	// Score sums per cluster: s_g = X_g' u_g.
	scores := mat.NewDense(d.NGroups, k, nil)
	for i := 0; i < n; i++ {
		u := resid.AtVec(i)
		g := d.Groups[i]
		for j := 0; j < k; j++ {
			scores.Set(g, j, scores.At(g, j)+d.X.At(i, j)*u)
		}
	}
	var meat mat.SymDense
	meat.SymOuterK(1, scores.T())

	var tmp, cov mat.Dense
	tmp.Mul(&bread, &meat)
	cov.Mul(&tmp, &bread)

	gg := float64(d.NGroups)
	c := gg / (gg - 1) * float64(n-1) / float64(n-k)

	se := make([]float64, k)
	for j := range se {
		se[j] = math.Sqrt(c * cov.At(j, j))
	}

	return &estimation{beta: beta, se: se, rsquared: rSquared(d.Y, &resid)}, nil
}

func matrixRank(x *mat.Dense) int {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDNone); !ok {
		return 0
	}
	values := svd.Values(nil)
	if len(values) == 0 || values[0] == 0 {
		return 0
	}
	rank := 0
	for _, s := range values {
		if s > rankTolerance*values[0] {
			rank++
		}
	}
	return rank
}

// rSquared is the centered coefficient of determination.
func rSquared(y, resid *mat.VecDense) float64 {
	n := y.Len()
	mean := 0.0
	for i := 0; i < n; i++ {
		mean += y.AtVec(i)
	}
	mean /= float64(n)

	var sst float64
	for i := 0; i < n; i++ {
		dv := y.AtVec(i) - mean
		sst += dv * dv
	}
	ssr := mat.Dot(resid, resid)
	if sst == 0 {
		return math.NaN()
	}
	return 1 - ssr/sst
}
