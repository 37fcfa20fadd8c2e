// Package statnotes is the code behind a small blog of data-analysis
// notebooks. It bundles the datasets the posts analyse, the statistical
// machinery they share, and the programs that regenerate every figure and
// table from scratch.
//
// The library packages follow a scikit-learn-style estimator idiom over
// gonum matrices: constructors with functional options, Fit/Predict/Score
// methods, structured errors before a model is fitted.
//
//   - dataset: embedded CSVs and a small column-oriented table
//   - linmodel, tree, survival: linear/logistic regression, CART, Cox PH
//   - metrics: classification, regression and concordance scores
//   - stepwise: AIC-driven variable selection over any fitter
//   - validation: optimism-corrected bootstrap and split-sample validation
//   - modelselection: cross-validation, grid search, benchmarking
//   - mendelian: Mendelian randomisation estimators and simulator
//   - viz, report: figures with mandatory alt text, CSV/xlsx exports
//   - site: markdown posts rendered and served locally
//
// Each cmd/posts program reproduces one post's analysis; cmd/site serves
// the rendered result.
package statnotes
